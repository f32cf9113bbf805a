package pricing

import (
	"testing"

	"github.com/expotoworld/expotoworld/backend/booking-service/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestDurationMonths(t *testing.T) {
	cases := map[string]int{
		"6 months":          6,
		"12":                12,
		"for 3":             3,
		"1 year, 18 months": 18,
		"indefinite":        1,
		"":                  1,
		"0 months":          1,
	}
	for in, want := range cases {
		assert.Equal(t, want, DurationMonths(in), in)
	}
}

func TestPrice(t *testing.T) {
	c := NewCalculator()
	cases := []struct {
		space    float64
		rate     float64
		duration string
		typ      models.StorageType
		want     string
	}{
		{500, 2, "6 months", models.StorageDry, "6000"},
		{100, 1.25, "3 months", models.StorageCold, "562.5"},
		{10, 3, "2", models.StorageHazmat, "120"},
		{10, 3, "2", models.StorageClimateControlled, "78"},
		{10, 3, "whenever", models.StorageType("mezzanine"), "30"},
		{0.1, 0.2, "3", models.StorageDry, "0.06"},
	}
	for _, tc := range cases {
		got := c.Price(tc.space, tc.rate, tc.duration, tc.typ)
		assert.Equal(t, tc.want, got.String(), "%v", tc)
	}
}

func TestEstimate(t *testing.T) {
	c := NewCalculator()
	q := &models.Quote{ID: "q1", RequiredSpace: 500, Duration: "6 months", StorageType: models.StorageCold}
	w := &models.Warehouse{ID: "w1", PricePerSqFt: 2}

	est := c.Estimate(q, w)
	assert.Equal(t, 9000.0, est.EstimatedPrice)
	assert.Equal(t, 6, est.DurationMonths)
	assert.Equal(t, 1.5, est.Multiplier)
	assert.Nil(t, q.FinalPrice)
}
