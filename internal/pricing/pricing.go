// Package pricing estimates storage prices. Estimates are advisory and never
// written back to a quote.
package pricing

import (
	"regexp"
	"strconv"

	"github.com/expotoworld/expotoworld/backend/booking-service/internal/models"
	"github.com/shopspring/decimal"
)

var digits = regexp.MustCompile(`\d+`)

// DefaultMultipliers are the storage-type surcharges
var DefaultMultipliers = map[models.StorageType]decimal.Decimal{
	models.StorageCold:              decimal.RequireFromString("1.5"),
	models.StorageHazmat:            decimal.RequireFromString("2.0"),
	models.StorageClimateControlled: decimal.RequireFromString("1.3"),
	models.StorageDry:               decimal.NewFromInt(1),
}

// Calculator prices quotes against a warehouse rate
type Calculator struct {
	multipliers map[models.StorageType]decimal.Decimal
}

func NewCalculator() *Calculator {
	return &Calculator{multipliers: DefaultMultipliers}
}

// Multiplier returns the surcharge for t, 1 for unknown types
func (c *Calculator) Multiplier(t models.StorageType) decimal.Decimal {
	if m, ok := c.multipliers[t]; ok {
		return m
	}
	return decimal.NewFromInt(1)
}

// DurationMonths takes the last number in a free-text duration such as
// "6 months". No number, or zero, counts as one month.
func DurationMonths(duration string) int {
	found := digits.FindAllString(duration, -1)
	if len(found) == 0 {
		return 1
	}
	n, err := strconv.Atoi(found[len(found)-1])
	if err != nil || n <= 0 {
		return 1
	}
	return n
}

// Price computes space * rate * months * multiplier, rounded to cents
func (c *Calculator) Price(space, ratePerSqFt float64, duration string, t models.StorageType) decimal.Decimal {
	return decimal.NewFromFloat(space).
		Mul(decimal.NewFromFloat(ratePerSqFt)).
		Mul(decimal.NewFromInt(int64(DurationMonths(duration)))).
		Mul(c.Multiplier(t)).
		Round(2)
}

// Estimate prices q against warehouse w
func (c *Calculator) Estimate(q *models.Quote, w *models.Warehouse) models.PriceEstimate {
	price, _ := c.Price(q.RequiredSpace, w.PricePerSqFt, q.Duration, q.StorageType).Float64()
	mult, _ := c.Multiplier(q.StorageType).Float64()
	return models.PriceEstimate{
		QuoteID:        q.ID,
		WarehouseID:    w.ID,
		RequiredSpace:  q.RequiredSpace,
		PricePerSqFt:   w.PricePerSqFt,
		DurationMonths: DurationMonths(q.Duration),
		Multiplier:     mult,
		EstimatedPrice: price,
	}
}
