// Package kit holds the kit catalog: the mapping from kit type to unit price.
package kit

import (
	"maps"
	"slices"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrZeroType is returned when a catalog entry uses the unset kit type 0.
	ErrZeroType = errors.New("kit type must not be 0")
	// ErrNonPositivePrice is returned when a catalog entry is not priced above zero.
	ErrNonPositivePrice = errors.New("kit price must be greater than 0")
)

// Kit is a single catalog entry.
type Kit struct {
	Type  int
	Price decimal.Decimal
}

// Catalog maps kit types to unit prices. It is read-only after construction.
type Catalog struct {
	prices map[int]decimal.Decimal
}

// NewCatalog builds a Catalog from the given kits. Later entries with the
// same type replace earlier ones.
func NewCatalog(kits ...Kit) (*Catalog, error) {
	prices := make(map[int]decimal.Decimal, len(kits))
	for _, k := range kits {
		if k.Type == 0 {
			return nil, ErrZeroType
		}
		if !k.Price.IsPositive() {
			return nil, errors.Wrapf(ErrNonPositivePrice, "kit type %d", k.Type)
		}
		prices[k.Type] = k.Price
	}
	return &Catalog{prices: prices}, nil
}

// DefaultCatalog returns the built-in catalog with a single kit type 1
// priced at 98.99.
func DefaultCatalog() *Catalog {
	return &Catalog{prices: map[int]decimal.Decimal{
		1: decimal.RequireFromString("98.99"),
	}}
}

// Price returns the unit price for kitType and whether it exists.
func (c *Catalog) Price(kitType int) (decimal.Decimal, bool) {
	p, ok := c.prices[kitType]
	return p, ok
}

// Kits returns all catalog entries ordered by type.
func (c *Catalog) Kits() []Kit {
	kits := make([]Kit, 0, len(c.prices))
	for _, t := range slices.Sorted(maps.Keys(c.prices)) {
		kits = append(kits, Kit{Type: t, Price: c.prices[t]})
	}
	return kits
}

// Len returns the number of kit types in the catalog.
func (c *Catalog) Len() int {
	return len(c.prices)
}
