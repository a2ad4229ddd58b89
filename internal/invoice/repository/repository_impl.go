package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	invoicedomain "github.com/hoikulink/tsumugi/internal/invoice/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() invoicedomain.Repository {
	return &repo{}
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, invoice *invoicedomain.Invoice) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "child_id"}, {Name: "month"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"price_list_label", "breakdown", "subtotal", "tax", "total",
			"note", "weekly_count", "finalized_at", "updated_at",
		}),
	}).Create(invoice).Error
}

func (r *repo) FindByChildMonth(ctx context.Context, db *gorm.DB, childID snowflake.ID, month string) (*invoicedomain.Invoice, error) {
	var inv invoicedomain.Invoice
	err := db.WithContext(ctx).
		Where("child_id = ? AND month = ?", childID, month).
		Limit(1).
		Find(&inv).Error
	if err != nil {
		return nil, err
	}
	if inv.ID == 0 {
		return nil, nil
	}
	return &inv, nil
}

func (r *repo) ListByChild(ctx context.Context, db *gorm.DB, childID snowflake.ID) ([]invoicedomain.Invoice, error) {
	var items []invoicedomain.Invoice
	err := db.WithContext(ctx).
		Where("child_id = ?", childID).
		Order("month DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListByMonth(ctx context.Context, db *gorm.DB, month string) ([]invoicedomain.Invoice, error) {
	var items []invoicedomain.Invoice
	err := db.WithContext(ctx).
		Where("month = ?", month).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
