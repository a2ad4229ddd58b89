package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	usagedomain "github.com/hoikulink/tsumugi/internal/usage/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type basicUsageRepo struct{}

func ProvideBasicUsage() usagedomain.BasicUsageRepository {
	return &basicUsageRepo{}
}

func (r *basicUsageRepo) Upsert(ctx context.Context, db *gorm.DB, usage *usagedomain.BasicUsage) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "child_id"}, {Name: "month"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"weekly_count", "weekdays", "updated_at",
		}),
	}).Create(usage).Error
}

func (r *basicUsageRepo) FindByChildMonth(ctx context.Context, db *gorm.DB, childID snowflake.ID, month string) (*usagedomain.BasicUsage, error) {
	var u usagedomain.BasicUsage
	err := db.WithContext(ctx).
		Where("child_id = ? AND month = ?", childID, month).
		Limit(1).
		Find(&u).Error
	if err != nil {
		return nil, err
	}
	if u.ID == 0 {
		return nil, nil
	}
	return &u, nil
}

func (r *basicUsageRepo) ListByMonth(ctx context.Context, db *gorm.DB, month string) ([]usagedomain.BasicUsage, error) {
	var items []usagedomain.BasicUsage
	err := db.WithContext(ctx).
		Where("month = ?", month).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

type optionUsageRepo struct{}

func ProvideOptionUsage() usagedomain.OptionUsageRepository {
	return &optionUsageRepo{}
}

func (r *optionUsageRepo) ReplaceForMonth(ctx context.Context, db *gorm.DB, rows []usagedomain.OptionUsage) error {
	if len(rows) == 0 {
		return nil
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "child_id"}, {Name: "month"}, {Name: "option_type"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"count", "updated_at",
		}),
	}).Create(&rows).Error
}

func (r *optionUsageRepo) ListByChildMonth(ctx context.Context, db *gorm.DB, childID snowflake.ID, month string) ([]usagedomain.OptionUsage, error) {
	var items []usagedomain.OptionUsage
	err := db.WithContext(ctx).
		Where("child_id = ? AND month = ?", childID, month).
		Order("option_type ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
