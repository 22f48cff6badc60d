package handler

import (
	"net/http"

	"github.com/go-faster/jx"
)

// ListKits responds with the kit catalog sorted by kit type.
func (h *Handler) ListKits(w http.ResponseWriter, _ *http.Request) {
	var e jx.Encoder
	e.ArrStart()
	for _, k := range h.orders.Catalog().Kits() {
		e.Obj(func(e *jx.Encoder) {
			e.Field("kit_type", func(e *jx.Encoder) { e.Int(k.Type) })
			e.Field("price", func(e *jx.Encoder) { e.Raw([]byte(k.Price.String())) })
		})
	}
	e.ArrEnd()
	writeJSON(w, http.StatusOK, &e)
}
