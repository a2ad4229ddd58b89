package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type BasicUsageRepository interface {
	Upsert(ctx context.Context, db *gorm.DB, usage *BasicUsage) error
	FindByChildMonth(ctx context.Context, db *gorm.DB, childID snowflake.ID, month string) (*BasicUsage, error)
	ListByMonth(ctx context.Context, db *gorm.DB, month string) ([]BasicUsage, error)
}

type OptionUsageRepository interface {
	// ReplaceForMonth upserts one row per known option type for the
	// child-month, overwriting whatever counts were stored before.
	ReplaceForMonth(ctx context.Context, db *gorm.DB, rows []OptionUsage) error
	ListByChildMonth(ctx context.Context, db *gorm.DB, childID snowflake.ID, month string) ([]OptionUsage, error)
}
