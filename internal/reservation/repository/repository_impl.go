package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	reservationdomain "github.com/hoikulink/tsumugi/internal/reservation/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() reservationdomain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*reservationdomain.Reservation, error) {
	var item reservationdomain.Reservation
	err := db.WithContext(ctx).
		Preload("Options").
		Where("id = ?", id).
		Limit(1).
		Find(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) ListByChildRange(ctx context.Context, db *gorm.DB, childID snowflake.ID, from, to time.Time) ([]reservationdomain.Reservation, error) {
	var items []reservationdomain.Reservation
	err := db.WithContext(ctx).
		Preload("Options").
		Where("child_id = ? AND date >= ? AND date < ?", childID, from, to).
		Order("date ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) CountSpotByChildRange(ctx context.Context, db *gorm.DB, childID snowflake.ID, from, to time.Time) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&reservationdomain.Reservation{}).
		Where("child_id = ? AND date >= ? AND date < ? AND kind = ?", childID, from, to, reservationdomain.KindSpot).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repo) ExistsByChildDate(ctx context.Context, db *gorm.DB, childID snowflake.ID, date time.Time) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&reservationdomain.Reservation{}).
		Where("child_id = ? AND date = ?", childID, date).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) BulkInsert(ctx context.Context, db *gorm.DB, items []reservationdomain.Reservation) error {
	if len(items) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&items).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, item *reservationdomain.Reservation) error {
	tx := db.WithContext(ctx)
	if err := tx.Where("reservation_id = ?", item.ID).Delete(&reservationdomain.Option{}).Error; err != nil {
		return err
	}
	// Save rewrites the row and re-creates the option associations.
	return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(item).Error
}

func (r *repo) DeleteByChildRange(ctx context.Context, db *gorm.DB, childID snowflake.ID, from, to time.Time) error {
	tx := db.WithContext(ctx)
	err := tx.Exec(
		`DELETE FROM reservation_options WHERE reservation_id IN (
			SELECT id FROM reservations WHERE child_id = ? AND date >= ? AND date < ?
		)`,
		childID, from, to,
	).Error
	if err != nil {
		return err
	}
	return tx.
		Where("child_id = ? AND date >= ? AND date < ?", childID, from, to).
		Delete(&reservationdomain.Reservation{}).Error
}

func (r *repo) DeleteByID(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	tx := db.WithContext(ctx)
	if err := tx.Where("reservation_id = ?", id).Delete(&reservationdomain.Option{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", id).Delete(&reservationdomain.Reservation{}).Error
}
