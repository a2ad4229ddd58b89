package domain

import (
	"context"

	childdomain "github.com/hoikulink/tsumugi/internal/child/domain"
)

type Service interface {
	// Preview recomputes the invoice from live data. Never persisted; the
	// same inputs always produce the same numbers.
	Preview(ctx context.Context, actor childdomain.Actor, childID, month string) (*Preview, error)
}

// Preview is an unsaved calculation. It deliberately carries no finalized_at
// and no ID: their absence is what marks the numbers as provisional.
type Preview struct {
	ChildID        string    `json:"child_id"`
	Month          string    `json:"month"`
	PriceListLabel string    `json:"price_list_label"`
	WeeklyCount    int       `json:"weekly_count"`
	Breakdown      Breakdown `json:"breakdown"`
	Total          int64     `json:"total"`
}
