package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	childdomain "github.com/hoikulink/tsumugi/internal/child/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() childdomain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*childdomain.Child, error) {
	var c childdomain.Child
	err := db.WithContext(ctx).Raw(
		`SELECT id, guardian_id, name, created_at, updated_at
		 FROM children WHERE id = ?`,
		id,
	).Scan(&c).Error
	if err != nil {
		return nil, err
	}
	if c.ID == 0 {
		return nil, nil
	}
	return &c, nil
}

func (r *repo) ListByGuardian(ctx context.Context, db *gorm.DB, guardianID snowflake.ID) ([]childdomain.Child, error) {
	var items []childdomain.Child
	err := db.WithContext(ctx).Raw(
		`SELECT id, guardian_id, name, created_at, updated_at
		 FROM children WHERE guardian_id = ? ORDER BY created_at ASC`,
		guardianID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListByName(ctx context.Context, db *gorm.DB, name string) ([]childdomain.Child, error) {
	var items []childdomain.Child
	q := db.WithContext(ctx)
	var err error
	if name == "" {
		err = q.Raw(
			`SELECT id, guardian_id, name, created_at, updated_at
			 FROM children ORDER BY name ASC`,
		).Scan(&items).Error
	} else {
		err = q.Raw(
			`SELECT id, guardian_id, name, created_at, updated_at
			 FROM children WHERE name LIKE ? ORDER BY name ASC`,
			"%"+name+"%",
		).Scan(&items).Error
	}
	if err != nil {
		return nil, err
	}
	return items, nil
}
