package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Child, error)
	ListByGuardian(ctx context.Context, db *gorm.DB, guardianID snowflake.ID) ([]Child, error)
	ListByName(ctx context.Context, db *gorm.DB, name string) ([]Child, error)
}
