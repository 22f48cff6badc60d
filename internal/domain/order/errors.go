package order

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Sentinels matched by the typed errors below via errors.Is.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrValidation      = errors.New("validation failed")
)

// Names of the validated order fields.
const (
	FieldCustomerID           = "customer_id"
	FieldExpectedDeliveryDate = "expected_delivery_date"
	FieldDesiredAmount        = "desired_amount"
	FieldKitType              = "kit_type"
)

// InvalidArgumentError indicates a required argument was left at its zero
// value.
type InvalidArgumentError struct {
	Argument string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("%s must be provided", e.Argument)
}

// Is reports whether target is ErrInvalidArgument.
func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// ValidationError indicates a provided value is semantically invalid.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// rejectReason returns the field that caused err, or "internal".
func rejectReason(err error) string {
	var iaErr *InvalidArgumentError
	if errors.As(err, &iaErr) {
		return iaErr.Argument
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Field
	}
	return "internal"
}
