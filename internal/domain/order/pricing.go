package order

import "github.com/shopspring/decimal"

// tier applies multiplier to orders of at least minAmount kits.
type tier struct {
	minAmount  int
	multiplier decimal.Decimal
}

// discountTiers is ordered from the largest minimum amount down.
var discountTiers = []tier{
	{minAmount: 50, multiplier: decimal.RequireFromString("0.85")},
	{minAmount: 10, multiplier: decimal.RequireFromString("0.95")},
}

var noDiscount = decimal.NewFromInt(1)

// DiscountMultiplier returns the volume discount factor for amount kits:
// 1 for 1-9 kits, 0.95 for 10-49 and 0.85 from 50 upwards.
func DiscountMultiplier(amount int) decimal.Decimal {
	for _, t := range discountTiers {
		if amount >= t.minAmount {
			return t.multiplier
		}
	}
	return noDiscount
}

// TotalPrice returns unitPrice * amount with the volume discount applied.
// The result is exact and is not rounded.
func TotalPrice(unitPrice decimal.Decimal, amount int) decimal.Decimal {
	return unitPrice.
		Mul(decimal.NewFromInt(int64(amount))).
		Mul(DiscountMultiplier(amount))
}
