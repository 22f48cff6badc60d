// Package file loads domain data from local files.
package file

import (
	"io"
	"os"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"

	"github.com/xenking/kit-orders/internal/domain/kit"
)

// LoadCatalog reads a kit catalog from path. Files ending in ".gz" are
// gzip-decompressed first. The expected format is a JSON array:
//
//	[{"kit_type": 1, "price": "98.99"}]
//
// Prices may be JSON strings or numbers.
func LoadCatalog(path string) (*kit.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	kits, err := DecodeKits(r)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}

	catalog, err := kit.NewCatalog(kits...)
	if err != nil {
		return nil, errors.Wrapf(err, "build catalog from %s", path)
	}
	return catalog, nil
}

// DecodeKits parses a JSON array of kit entries. Duplicate kit types are
// rejected.
func DecodeKits(r io.Reader) ([]kit.Kit, error) {
	var (
		kits []kit.Kit
		seen = make(map[int]struct{})
	)

	d := jx.Decode(r, 4096)
	if err := d.Arr(func(d *jx.Decoder) error {
		k, err := decodeKit(d)
		if err != nil {
			return errors.Wrapf(err, "entry %d", len(kits))
		}
		if _, dup := seen[k.Type]; dup {
			return errors.Errorf("duplicate kit type %d", k.Type)
		}
		seen[k.Type] = struct{}{}
		kits = append(kits, k)
		return nil
	}); err != nil {
		return nil, err
	}

	return kits, nil
}

func decodeKit(d *jx.Decoder) (kit.Kit, error) {
	var (
		k                 kit.Kit
		hasType, hasPrice bool
	)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "kit_type":
			v, err := d.Int()
			if err != nil {
				return errors.Wrap(err, "kit_type")
			}
			k.Type, hasType = v, true
		case "price":
			p, err := decodeDecimal(d)
			if err != nil {
				return errors.Wrap(err, "price")
			}
			k.Price, hasPrice = p, true
		default:
			return d.Skip()
		}
		return nil
	}); err != nil {
		return kit.Kit{}, err
	}

	if !hasType {
		return kit.Kit{}, errors.New("kit_type is required")
	}
	if !hasPrice {
		return kit.Kit{}, errors.New("price is required")
	}
	return k, nil
}

func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	switch tt := d.Next(); tt {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Decimal{}, err
		}
		return decimal.NewFromString(s)
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return decimal.Decimal{}, err
		}
		return decimal.NewFromString(string(n))
	default:
		return decimal.Decimal{}, errors.Errorf("unexpected json type %s", tt)
	}
}
