// Package domain contains the pure invoice calculation: monthly usage plus a
// price list version in, a tax-inclusive line-item breakdown out.
package domain

import (
	"math"

	pricelistdomain "github.com/hoikulink/tsumugi/internal/pricelist/domain"
	reservationdomain "github.com/hoikulink/tsumugi/internal/reservation/domain"
	usagedomain "github.com/hoikulink/tsumugi/internal/usage/domain"
)

// TaxRate is the consumption tax applied to every invoice.
const TaxRate = 0.10

// Line is one priced row of the breakdown.
type Line struct {
	Quantity  int64 `json:"quantity"`
	UnitPrice int64 `json:"unit_price"`
	Amount    int64 `json:"amount"`
}

// Breakdown is the full line-item result. Once an invoice is finalized this
// document is frozen verbatim as the system of record.
type Breakdown struct {
	Basic    Line            `json:"basic"`
	Spot     Line            `json:"spot"`
	Options  map[string]Line `json:"options"`
	Subtotal int64           `json:"subtotal"`
	Tax      int64           `json:"tax"`
	Total    int64           `json:"total"`
}

// Compute derives the breakdown. Pure and side-effect free; safe to call
// repeatedly for previews.
//
// The basic line is a flat monthly fee: the tier's unit price is charged
// exactly once, while the displayed quantity is the declared weekly count.
// That asymmetry is the billing team's long-standing rule, not a bug.
// An unknown tier resolves to a zero charge rather than an error.
func Compute(priceList *pricelistdomain.PriceList, basicUsage *usagedomain.BasicUsage, spotCount int64, optionUsages []usagedomain.OptionUsage) Breakdown {
	basicUnit := priceList.BasicTierPrice(basicUsage.WeeklyCount)
	basic := Line{
		Quantity:  int64(basicUsage.WeeklyCount),
		UnitPrice: basicUnit,
		Amount:    basicUnit,
	}

	spotUnit := priceList.SpotUnitPrice()
	spot := Line{
		Quantity:  spotCount,
		UnitPrice: spotUnit,
		Amount:    spotCount * spotUnit,
	}

	counts := make(map[string]int64, len(optionUsages))
	for _, u := range optionUsages {
		counts[u.OptionType] = u.Count
	}
	options := make(map[string]Line, len(counts))
	for _, t := range reservationdomain.KnownOptionTypes() {
		count, ok := counts[string(t)]
		if !ok {
			continue
		}
		unit := priceList.OptionUnitPrice(string(t))
		options[string(t)] = Line{
			Quantity:  count,
			UnitPrice: unit,
			Amount:    count * unit,
		}
	}

	subtotal := basic.Amount + spot.Amount
	for _, line := range options {
		subtotal += line.Amount
	}
	tax := RoundTax(subtotal)

	return Breakdown{
		Basic:    basic,
		Spot:     spot,
		Options:  options,
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal + tax,
	}
}

// RoundTax applies the tax rate with half-up rounding, matching how the
// billing office has always rounded.
func RoundTax(subtotal int64) int64 {
	return int64(math.Round(float64(subtotal) * TaxRate))
}
