// Package domain contains the versioned, append-only price list.
package domain

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// SpotSlotFull is the canonical spot time slot billed by the calculator.
const SpotSlotFull = "full"

// PriceList is one immutable version of the fee schedule. Corrections are made
// by creating a new version; the current list is the newest by created_at.
type PriceList struct {
	ID           snowflake.ID      `gorm:"primaryKey"`
	Label        string            `gorm:"type:text;not null;uniqueIndex:ux_price_list_label"`
	BasicPrices  datatypes.JSONMap `gorm:"type:jsonb;not null"`
	SpotPrices   datatypes.JSONMap `gorm:"type:jsonb;not null"`
	OptionPrices datatypes.JSONMap `gorm:"type:jsonb;not null"`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (PriceList) TableName() string { return "price_lists" }

// BasicTierPrice returns the flat monthly fee for a declared weekly count.
// An unknown tier resolves to zero charge, mirroring the billing team's
// current rule for families outside the published tiers.
func (p *PriceList) BasicTierPrice(weeklyCount int) int64 {
	return amountFrom(p.BasicPrices[strconv.Itoa(weeklyCount)])
}

// SpotUnitPrice returns the per-day spot fee. The "full" slot is canonical;
// a single-entry map is treated as the one configured slot.
func (p *PriceList) SpotUnitPrice() int64 {
	if v, ok := p.SpotPrices[SpotSlotFull]; ok {
		return amountFrom(v)
	}
	if len(p.SpotPrices) == 1 {
		for _, v := range p.SpotPrices {
			return amountFrom(v)
		}
	}
	return 0
}

// OptionUnitPrice returns the per-use fee for an add-on option type,
// zero when the type is not priced.
func (p *PriceList) OptionUnitPrice(optionType string) int64 {
	return amountFrom(p.OptionPrices[optionType])
}

// AmountMap normalizes a JSON price column to integral yen per key.
func AmountMap(m datatypes.JSONMap) map[string]int64 {
	out := make(map[string]int64, len(m))
	for k, v := range m {
		out[k] = amountFrom(v)
	}
	return out
}

// amountFrom normalizes JSON column values to integral yen.
func amountFrom(v any) int64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0
		}
		return i
	default:
		return 0
	}
}
