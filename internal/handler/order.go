package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/kit-orders/internal/domain/order"
)

// PlaceOrder decodes an order request, delegates to the order service and
// responds with the placed order.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	req, err := decodePlaceOrder(jx.Decode(http.MaxBytesReader(w, r.Body, maxBodySize), 512))
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed request: "+err.Error())
		return
	}

	placed, err := h.orders.PlaceOrder(r.Context(), req)
	if err != nil {
		if code, ok := mapOrderError(err); ok {
			writeError(w, code, err.Error())
			return
		}
		writeInternal(w, r, err)
		return
	}

	var e jx.Encoder
	encodeOrder(&e, placed)
	writeJSON(w, http.StatusCreated, &e)
}

// ListCustomerOrders responds with every order of the customer in placement
// order.
func (h *Handler) ListCustomerOrders(w http.ResponseWriter, r *http.Request) {
	customerID, err := strconv.Atoi(r.PathValue("customerID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "customer identifier must be an integer")
		return
	}

	orders, err := h.orders.GetOrdersForCustomer(r.Context(), customerID)
	if err != nil {
		if code, ok := mapOrderError(err); ok {
			writeError(w, code, err.Error())
			return
		}
		writeInternal(w, r, err)
		return
	}

	var e jx.Encoder
	e.ArrStart()
	for i := range orders {
		encodeOrder(&e, &orders[i])
	}
	e.ArrEnd()
	writeJSON(w, http.StatusOK, &e)
}

// mapOrderError converts domain errors to HTTP status codes. It reports false
// for errors the client is not responsible for.
func mapOrderError(err error) (int, bool) {
	switch {
	case errors.Is(err, order.ErrInvalidArgument):
		return http.StatusBadRequest, true
	case errors.Is(err, order.ErrValidation):
		return http.StatusUnprocessableEntity, true
	default:
		return 0, false
	}
}

// decodePlaceOrder reads a placement request. Absent and null fields keep
// their zero value, which the service rejects as missing arguments. Anything
// after the object is an error.
func decodePlaceOrder(d *jx.Decoder) (order.PlaceOrderRequest, error) {
	var req order.PlaceOrderRequest
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		if d.Next() == jx.Null {
			return d.Null()
		}

		var err error
		switch string(key) {
		case "customer_id":
			req.CustomerID, err = d.Int()
		case "expected_delivery_date":
			req.ExpectedDeliveryDate, err = decodeDate(d)
		case "desired_amount":
			req.DesiredAmount, err = d.Int()
		case "kit_type":
			req.KitType, err = d.Int()
		default:
			return d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, string(key))
		}
		return nil
	})
	if err != nil {
		return order.PlaceOrderRequest{}, err
	}
	if tt := d.Next(); tt != jx.Invalid {
		return order.PlaceOrderRequest{}, errors.Errorf("unexpected %s after request object", tt)
	}
	return req, nil
}

// decodeDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp.
func decodeDate(d *jx.Decoder) (time.Time, error) {
	s, err := d.Str()
	if err != nil {
		return time.Time{}, err
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, errors.Errorf("invalid date %q", s)
	}
	return t, nil
}

// encodeOrder writes o as a JSON object. The total price is written as an
// exact JSON number.
func encodeOrder(e *jx.Encoder, o *order.Order) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(o.ID)
	e.FieldStart("customer_id")
	e.Int(o.CustomerID)
	e.FieldStart("expected_delivery_date")
	e.Str(o.ExpectedDeliveryDate.Format(time.DateOnly))
	e.FieldStart("desired_amount")
	e.Int(o.DesiredAmount)
	e.FieldStart("kit_type")
	e.Int(o.KitType)
	e.FieldStart("total_price")
	e.Raw([]byte(o.TotalPrice.String()))
	e.FieldStart("created_at")
	e.Str(o.CreatedAt.UTC().Format(time.RFC3339Nano))
	e.ObjEnd()
}
