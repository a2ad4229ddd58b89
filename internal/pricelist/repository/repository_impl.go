package repository

import (
	"context"

	pricelistdomain "github.com/hoikulink/tsumugi/internal/pricelist/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() pricelistdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, list *pricelistdomain.PriceList) error {
	return db.WithContext(ctx).Create(list).Error
}

func (r *repo) FindByLabel(ctx context.Context, db *gorm.DB, label string) (*pricelistdomain.PriceList, error) {
	var p pricelistdomain.PriceList
	err := db.WithContext(ctx).
		Where("label = ?", label).
		Limit(1).
		Find(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) FindCurrent(ctx context.Context, db *gorm.DB) (*pricelistdomain.PriceList, error) {
	var p pricelistdomain.PriceList
	err := db.WithContext(ctx).
		Order("created_at DESC").
		Limit(1).
		Find(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, cursor *pricelistdomain.ListCursor, limit int) ([]pricelistdomain.PriceList, error) {
	query := db.WithContext(ctx).
		Order("created_at DESC, id DESC")
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}
	if limit > 0 {
		query = query.Limit(limit + 1)
	}

	var items []pricelistdomain.PriceList
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
