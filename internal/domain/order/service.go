package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"

	"github.com/xenking/kit-orders/internal/domain/kit"
)

// MaxKitsPerOrder is the largest amount of kits a single order may request.
const MaxKitsPerOrder = 999

// PlaceOrderRequest holds the input for placing an order.
type PlaceOrderRequest struct {
	CustomerID           int
	ExpectedDeliveryDate time.Time
	DesiredAmount        int
	KitType              int
}

// Service validates, prices and stores kit orders.
type Service struct {
	catalog *kit.Catalog
	orders  Repository
	now     func() time.Time
	meters  metric.MeterProvider

	placed   metric.Int64Counter
	rejected metric.Int64Counter
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the source of the current date used to reject delivery
// dates in the past.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithMeterProvider enables placement metrics.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *Service) {
		s.meters = mp
	}
}

// NewService creates an order Service over the given catalog and repository.
func NewService(catalog *kit.Catalog, orders Repository, opts ...Option) (*Service, error) {
	s := &Service{
		catalog: catalog,
		orders:  orders,
		now:     time.Now,
		meters:  noop.NewMeterProvider(),
	}
	for _, opt := range opts {
		opt(s)
	}

	meter := s.meters.Meter("github.com/xenking/kit-orders/internal/domain/order")
	var err error
	if s.placed, err = meter.Int64Counter("orders.placed",
		metric.WithDescription("Number of orders placed"),
	); err != nil {
		return nil, errors.Wrap(err, "create placed counter")
	}
	if s.rejected, err = meter.Int64Counter("orders.rejected",
		metric.WithDescription("Number of orders rejected by validation"),
	); err != nil {
		return nil, errors.Wrap(err, "create rejected counter")
	}

	return s, nil
}

// Catalog returns the kit catalog the service prices orders with.
func (s *Service) Catalog() *kit.Catalog {
	return s.catalog
}

// PlaceOrder validates req, prices it and appends the resulting order.
// Validation failures are returned as *InvalidArgumentError or
// *ValidationError and leave the repository unchanged.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error) {
	if err := s.validate(req); err != nil {
		s.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", rejectReason(err))))
		return nil, err
	}

	// Kit type was validated above.
	unitPrice, _ := s.catalog.Price(req.KitType)

	o := Order{
		ID:                   uuid.New().String(),
		CustomerID:           req.CustomerID,
		ExpectedDeliveryDate: req.ExpectedDeliveryDate,
		DesiredAmount:        req.DesiredAmount,
		KitType:              req.KitType,
		TotalPrice:           TotalPrice(unitPrice, req.DesiredAmount),
		CreatedAt:            s.now(),
	}
	if err := s.orders.Append(ctx, o); err != nil {
		return nil, errors.Wrap(err, "append order")
	}
	s.placed.Add(ctx, 1)

	zctx.From(ctx).Debug("Order placed",
		zap.String("order_id", o.ID),
		zap.Int("customer_id", o.CustomerID),
		zap.Int("amount", o.DesiredAmount),
		zap.Stringer("total", o.TotalPrice),
	)

	return &o, nil
}

// TryPlaceOrder is PlaceOrder reduced to a success flag. The failure reason
// is logged.
func (s *Service) TryPlaceOrder(ctx context.Context, req PlaceOrderRequest) bool {
	if _, err := s.PlaceOrder(ctx, req); err != nil {
		zctx.From(ctx).Warn("Order rejected",
			zap.Int("customer_id", req.CustomerID),
			zap.Error(err),
		)
		return false
	}
	return true
}

// GetOrdersForCustomer returns the orders placed by customerID in the order
// they were placed. The result is never nil.
func (s *Service) GetOrdersForCustomer(ctx context.Context, customerID int) ([]Order, error) {
	if err := validateCustomerID(customerID); err != nil {
		return nil, err
	}

	orders, err := s.orders.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	if orders == nil {
		orders = []Order{}
	}
	return orders, nil
}

func (s *Service) validate(req PlaceOrderRequest) error {
	if err := validateCustomerID(req.CustomerID); err != nil {
		return err
	}
	if err := validateDeliveryDate(req.ExpectedDeliveryDate, s.now()); err != nil {
		return err
	}
	if err := validateKitAmount(req.DesiredAmount); err != nil {
		return err
	}
	return validateKitType(req.KitType, s.catalog)
}

func validateCustomerID(id int) error {
	switch {
	case id == 0:
		return &InvalidArgumentError{Argument: FieldCustomerID}
	case id < 0:
		return &ValidationError{
			Field:   FieldCustomerID,
			Message: "Customer identifier can not be negative.",
		}
	}
	return nil
}

// validateDeliveryDate compares calendar dates only: a delivery today is
// accepted regardless of the time of day.
func validateDeliveryDate(date, now time.Time) error {
	if date.IsZero() {
		return &InvalidArgumentError{Argument: FieldExpectedDeliveryDate}
	}
	if calendarDate(date).Before(calendarDate(now)) {
		return &ValidationError{
			Field:   FieldExpectedDeliveryDate,
			Message: "Expected delivery date can not be in the past.",
		}
	}
	return nil
}

func validateKitAmount(amount int) error {
	var msg string
	switch {
	case amount == 0:
		msg = "Kit amount can not be 0."
	case amount < 0:
		msg = "Kit amount can not be negative."
	case amount > MaxKitsPerOrder:
		msg = fmt.Sprintf("Kit amount per order can not be more than %d.", MaxKitsPerOrder)
	default:
		return nil
	}
	return &ValidationError{Field: FieldDesiredAmount, Message: msg}
}

func validateKitType(kitType int, catalog *kit.Catalog) error {
	if kitType == 0 {
		return &InvalidArgumentError{Argument: FieldKitType}
	}
	if _, ok := catalog.Price(kitType); !ok {
		return &ValidationError{
			Field:   FieldKitType,
			Message: fmt.Sprintf("Kit type %d doesn't exist.", kitType),
		}
	}
	return nil
}

// calendarDate strips the time of day from t, keeping t's own calendar date.
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
