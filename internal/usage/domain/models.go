// Package domain contains the monthly usage aggregates billing reads:
// the declared basic usage and the per-option-type totals.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// BasicUsage stores the weekly cadence a guardian declared for a month.
// The price tier is keyed by this declared frequency, not by the actual day
// count, so a short month does not under-bill a family committed to N days a
// week. Written only by the reservation replace transaction.
type BasicUsage struct {
	ID          snowflake.ID   `gorm:"primaryKey"`
	ChildID     snowflake.ID   `gorm:"not null;uniqueIndex:ux_basic_usage_child_month"`
	Month       string         `gorm:"type:text;not null;uniqueIndex:ux_basic_usage_child_month"`
	WeeklyCount int            `gorm:"not null"`
	Weekdays    datatypes.JSON `gorm:"not null"`
	CreatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (BasicUsage) TableName() string { return "basic_usages" }

// OptionUsage is the durable per-month option total billing consumes.
// A row exists for every known option type, zero counts included, so the
// calculator never distinguishes "absent" from "zero". Rows survive raw
// reservation edits made for other months.
type OptionUsage struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	ChildID    snowflake.ID `gorm:"not null;uniqueIndex:ux_option_usage_child_month_type"`
	Month      string       `gorm:"type:text;not null;uniqueIndex:ux_option_usage_child_month_type"`
	OptionType string       `gorm:"type:text;not null;uniqueIndex:ux_option_usage_child_month_type"`
	Count      int64        `gorm:"not null;default:0"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (OptionUsage) TableName() string { return "monthly_option_usages" }

var (
	ErrInvalidWeeklyCount = errors.New("invalid_weekly_count")
	ErrInvalidWeekday     = errors.New("invalid_weekday")
	ErrBasicUsageNotFound = errors.New("basic_usage_not_found")
)

var weekdayNames = map[string]struct{}{
	"sunday": {}, "monday": {}, "tuesday": {}, "wednesday": {},
	"thursday": {}, "friday": {}, "saturday": {},
}

// ValidWeekday reports whether the value is a lowercase English weekday name.
func ValidWeekday(value string) bool {
	_, ok := weekdayNames[value]
	return ok
}
