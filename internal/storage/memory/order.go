// Package memory provides process-local implementations of the domain
// repositories.
package memory

import (
	"context"
	"sync"

	"github.com/xenking/kit-orders/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository as an append-only slice.
// It is safe for concurrent use.
type OrderRepository struct {
	mu     sync.RWMutex
	orders []order.Order
}

// NewOrderRepository returns an empty OrderRepository.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{}
}

// Append adds o after all previously appended orders.
func (r *OrderRepository) Append(_ context.Context, o order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.orders = append(r.orders, o)
	return nil
}

// ListByCustomer returns a copy of the orders of customerID in insertion
// order. It returns an empty slice when there are none.
func (r *OrderRepository) ListByCustomer(_ context.Context, customerID int) ([]order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []order.Order{}
	for _, o := range r.orders {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out, nil
}

// Len returns the total number of stored orders.
func (r *OrderRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.orders)
}
