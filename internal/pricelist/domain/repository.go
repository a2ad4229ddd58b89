package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// ListCursor marks the last row of the previous page.
type ListCursor struct {
	CreatedAt time.Time
	ID        snowflake.ID
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, list *PriceList) error
	FindByLabel(ctx context.Context, db *gorm.DB, label string) (*PriceList, error)
	FindCurrent(ctx context.Context, db *gorm.DB) (*PriceList, error)
	// List returns up to limit+1 rows newest first, starting after the
	// cursor when one is given. The extra row signals another page.
	List(ctx context.Context, db *gorm.DB, cursor *ListCursor, limit int) ([]PriceList, error)
}
