package domain

import (
	"context"
	"errors"
	"time"

	childdomain "github.com/hoikulink/tsumugi/internal/child/domain"
)

type Service interface {
	// Replace atomically swaps a child's entire month: reservations, their
	// options, the declared basic usage, and the derived option aggregates.
	Replace(ctx context.Context, actor childdomain.Actor, req ReplaceRequest) (*MonthResponse, error)
	// Create adds a single reservation; the month's option aggregates are
	// re-derived in the same transaction.
	Create(ctx context.Context, actor childdomain.Actor, req CreateRequest) (*Response, error)
	// Update edits or moves a single reservation, re-deriving aggregates for
	// every affected month.
	Update(ctx context.Context, actor childdomain.Actor, id string, req UpdateRequest) (*Response, error)
	// Delete removes a single reservation and re-derives its month.
	Delete(ctx context.Context, actor childdomain.Actor, id string) error
	ListMonth(ctx context.Context, actor childdomain.Actor, childID, month string) (*MonthResponse, error)
}

type OptionInput struct {
	Type  string  `json:"type"`
	Count int64   `json:"count"`
	Time  *string `json:"time,omitempty"`
	Label *string `json:"label,omitempty"`
}

type ReservationInput struct {
	Date    string        `json:"date"`
	Kind    string        `json:"kind"`
	Options []OptionInput `json:"options"`
}

type BasicUsageInput struct {
	WeeklyCount int      `json:"weekly_count"`
	Weekdays    []string `json:"weekdays"`
}

type ReplaceRequest struct {
	ChildID      string             `json:"child_id"`
	Month        string             `json:"month"`
	BasicUsage   BasicUsageInput    `json:"basic_usage"`
	Reservations []ReservationInput `json:"reservations"`
}

type CreateRequest struct {
	ChildID string        `json:"child_id"`
	Date    string        `json:"date"`
	Kind    string        `json:"kind"`
	Options []OptionInput `json:"options"`
}

type UpdateRequest struct {
	NewDate *string        `json:"new_date,omitempty"`
	Kind    *string        `json:"kind,omitempty"`
	Options *[]OptionInput `json:"options,omitempty"`
}

type OptionResponse struct {
	Type  OptionType `json:"type"`
	Count int64      `json:"count"`
	Time  *string    `json:"time,omitempty"`
	Label *string    `json:"label,omitempty"`
}

type Response struct {
	ID        string           `json:"id"`
	ChildID   string           `json:"child_id"`
	Date      string           `json:"date"`
	Kind      Kind             `json:"kind"`
	Options   []OptionResponse `json:"options"`
	CreatedAt time.Time        `json:"created_at"`
}

type MonthResponse struct {
	ChildID      string     `json:"child_id"`
	Month        string     `json:"month"`
	WeeklyCount  int        `json:"weekly_count"`
	Weekdays     []string   `json:"weekdays"`
	Reservations []Response `json:"reservations"`
}

// DateLayout is the wire format for reservation dates.
const DateLayout = "2006-01-02"

var (
	ErrInvalidChildID   = errors.New("invalid_child_id")
	ErrInvalidDate      = errors.New("invalid_date")
	ErrDateOutsideMonth = errors.New("date_outside_month")
	ErrInvalidKind      = errors.New("invalid_kind")
	ErrInvalidOption    = errors.New("invalid_option")
	ErrDuplicateDate    = errors.New("duplicate_reservation_date")
	ErrCutoffPassed     = errors.New("reservation_cutoff_passed")
	ErrNotFound         = errors.New("reservation_not_found")
)
