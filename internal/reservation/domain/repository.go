package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Reservation, error)
	ListByChildRange(ctx context.Context, db *gorm.DB, childID snowflake.ID, from, to time.Time) ([]Reservation, error)
	CountSpotByChildRange(ctx context.Context, db *gorm.DB, childID snowflake.ID, from, to time.Time) (int64, error)
	ExistsByChildDate(ctx context.Context, db *gorm.DB, childID snowflake.ID, date time.Time) (bool, error)
	BulkInsert(ctx context.Context, db *gorm.DB, items []Reservation) error
	Update(ctx context.Context, db *gorm.DB, item *Reservation) error
	DeleteByChildRange(ctx context.Context, db *gorm.DB, childID snowflake.ID, from, to time.Time) error
	DeleteByID(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
