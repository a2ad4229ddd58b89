package domain

import (
	"context"
	"time"

	billingdomain "github.com/hoikulink/tsumugi/internal/billing/domain"
	childdomain "github.com/hoikulink/tsumugi/internal/child/domain"
)

type Service interface {
	// Finalize freezes a computed breakdown as the invoice of record.
	// Re-finalization is the documented way to correct a mistake.
	Finalize(ctx context.Context, req FinalizeRequest) (*Response, error)
	// Get returns the frozen row; it never recomputes from live data.
	Get(ctx context.Context, actor childdomain.Actor, childID, month string) (*Response, error)
	// ListForGuardian returns finalized invoices for each of the guardian's
	// children, newest month first.
	ListForGuardian(ctx context.Context, actor childdomain.Actor) ([]ChildInvoices, error)
	// Overview lists children with usage in the month and whether their
	// invoice is confirmed.
	Overview(ctx context.Context, month, name string) ([]OverviewRow, error)
}

type FinalizeRequest struct {
	ChildID        string                  `json:"child_id"`
	Month          string                  `json:"month"`
	PriceListLabel string                  `json:"price_list_label"`
	Breakdown      billingdomain.Breakdown `json:"breakdown"`
	Total          int64                   `json:"total"`
	WeeklyCount    int                     `json:"weekly_count"`
	Note           string                  `json:"note"`
}

// Response mirrors the preview payload plus the fields that mark an invoice
// as locked: a stored ID and a non-null finalized_at.
type Response struct {
	ID             string                  `json:"id"`
	ChildID        string                  `json:"child_id"`
	Month          string                  `json:"month"`
	PriceListLabel string                  `json:"price_list_label"`
	Breakdown      billingdomain.Breakdown `json:"breakdown"`
	WeeklyCount    int                     `json:"weekly_count"`
	Note           string                  `json:"note"`
	Total          int64                   `json:"total"`
	FinalizedAt    time.Time               `json:"finalized_at"`
}

type InvoiceSummary struct {
	ID          string    `json:"id"`
	Month       string    `json:"month"`
	Total       int64     `json:"total"`
	FinalizedAt time.Time `json:"finalized_at"`
}

type ChildInvoices struct {
	ChildID   string           `json:"child_id"`
	ChildName string           `json:"child_name"`
	Invoices  []InvoiceSummary `json:"invoices"`
}

type OverviewRow struct {
	ChildID   string `json:"child_id"`
	ChildName string `json:"child_name"`
	Confirmed bool   `json:"confirmed"`
	Total     *int64 `json:"total"`
}
