package domain

import (
	"testing"

	pricelistdomain "github.com/hoikulink/tsumugi/internal/pricelist/domain"
	usagedomain "github.com/hoikulink/tsumugi/internal/usage/domain"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func standardPriceList() *pricelistdomain.PriceList {
	return &pricelistdomain.PriceList{
		Label: "2026-04",
		BasicPrices: datatypes.JSONMap{
			"3": int64(45000),
			"5": int64(55000),
		},
		SpotPrices: datatypes.JSONMap{
			pricelistdomain.SpotSlotFull: int64(8000),
		},
		OptionPrices: datatypes.JSONMap{
			"lunch":      int64(600),
			"dinner":     int64(700),
			"school_car": int64(300),
			"home_car":   int64(300),
			"lesson_car": int64(500),
		},
	}
}

func TestCompute_StandardMonth(t *testing.T) {
	usage := &usagedomain.BasicUsage{WeeklyCount: 5}
	options := []usagedomain.OptionUsage{
		{OptionType: "lunch", Count: 5},
		{OptionType: "dinner", Count: 0},
		{OptionType: "school_car", Count: 0},
		{OptionType: "home_car", Count: 0},
		{OptionType: "lesson_car", Count: 0},
	}

	b := Compute(standardPriceList(), usage, 3, options)

	// 55000 + 3*8000 + 5*600 = 82000
	assert.Equal(t, int64(82000), b.Subtotal)
	assert.Equal(t, int64(8200), b.Tax)
	assert.Equal(t, int64(90200), b.Total)
	assert.Equal(t, int64(24000), b.Spot.Amount)
	assert.Equal(t, int64(3000), b.Options["lunch"].Amount)
	assert.Equal(t, int64(0), b.Options["dinner"].Amount)
}

func TestCompute_BasicLineIsFlatFee(t *testing.T) {
	usage := &usagedomain.BasicUsage{WeeklyCount: 5}

	b := Compute(standardPriceList(), usage, 0, nil)

	// The weekly count shows up as quantity but is never multiplied in.
	assert.Equal(t, int64(5), b.Basic.Quantity)
	assert.Equal(t, int64(55000), b.Basic.UnitPrice)
	assert.Equal(t, int64(55000), b.Basic.Amount)
}

func TestCompute_UnknownTierChargesZero(t *testing.T) {
	usage := &usagedomain.BasicUsage{WeeklyCount: 7}

	b := Compute(standardPriceList(), usage, 0, nil)

	assert.Equal(t, int64(0), b.Basic.UnitPrice)
	assert.Equal(t, int64(0), b.Basic.Amount)
	assert.Equal(t, int64(0), b.Subtotal)
	assert.Equal(t, int64(0), b.Total)
}

func TestCompute_Deterministic(t *testing.T) {
	usage := &usagedomain.BasicUsage{WeeklyCount: 3}
	options := []usagedomain.OptionUsage{
		{OptionType: "lunch", Count: 2},
		{OptionType: "lesson_car", Count: 4},
	}

	first := Compute(standardPriceList(), usage, 2, options)
	second := Compute(standardPriceList(), usage, 2, options)

	assert.Equal(t, first, second)
}

func TestCompute_SkipsAbsentOptionTypes(t *testing.T) {
	usage := &usagedomain.BasicUsage{WeeklyCount: 3}
	options := []usagedomain.OptionUsage{
		{OptionType: "lunch", Count: 1},
	}

	b := Compute(standardPriceList(), usage, 0, options)

	assert.Contains(t, b.Options, "lunch")
	assert.NotContains(t, b.Options, "dinner")
	assert.NotContains(t, b.Options, "lesson_car")
}

func TestRoundTax_HalfUp(t *testing.T) {
	cases := []struct {
		subtotal int64
		tax      int64
	}{
		{0, 0},
		{100, 10},
		{104, 10},  // 10.4 rounds down
		{105, 11},  // 10.5 rounds up
		{106, 11},  // 10.6 rounds up
		{82000, 8200},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.tax, RoundTax(tc.subtotal), "subtotal=%d", tc.subtotal)
	}
}
