// Package domain contains the finalized invoice, the system of record for a
// billed child-month.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Invoice is a frozen bill. One row per (child, month); finalization is an
// upsert, so re-finalizing overwrites the row and refreshes finalized_at.
// Ordinary usage or price-list changes never touch a stored invoice.
type Invoice struct {
	ID             snowflake.ID   `gorm:"primaryKey"`
	ChildID        snowflake.ID   `gorm:"not null;uniqueIndex:ux_invoice_child_month"`
	Month          string         `gorm:"type:text;not null;uniqueIndex:ux_invoice_child_month"`
	PriceListLabel string         `gorm:"type:text;not null"`
	Breakdown      datatypes.JSON `gorm:"not null"`
	Subtotal       int64          `gorm:"not null"`
	Tax            int64          `gorm:"not null"`
	Total          int64          `gorm:"not null"`
	Note           string         `gorm:"type:text"`
	WeeklyCount    int            `gorm:"not null"`
	FinalizedAt    time.Time      `gorm:"not null"`
	CreatedAt      time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

var (
	ErrInvalidLabel = errors.New("invalid_price_list_label")
	ErrInvalidTotal = errors.New("invalid_total")
	ErrNotFound     = errors.New("invoice_not_found")
)
