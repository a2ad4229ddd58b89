package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// Upsert writes the invoice in one atomic statement keyed by
	// (child_id, month).
	Upsert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	FindByChildMonth(ctx context.Context, db *gorm.DB, childID snowflake.ID, month string) (*Invoice, error)
	ListByChild(ctx context.Context, db *gorm.DB, childID snowflake.ID) ([]Invoice, error)
	ListByMonth(ctx context.Context, db *gorm.DB, month string) ([]Invoice, error)
}
