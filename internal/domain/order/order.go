package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Order is a placed kit order. It is never modified after placement.
type Order struct {
	ID                   string
	CustomerID           int
	ExpectedDeliveryDate time.Time
	DesiredAmount        int
	KitType              int
	TotalPrice           decimal.Decimal
	CreatedAt            time.Time
}

// Repository is the append-only order sequence backing a Service.
type Repository interface {
	// Append adds o to the end of the sequence.
	Append(ctx context.Context, o Order) error
	// ListByCustomer returns the orders of customerID in insertion order.
	ListByCustomer(ctx context.Context, customerID int) ([]Order, error)
}
