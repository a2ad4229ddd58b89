// Package seed bootstraps a fresh install with a starter price list so the
// preview and finalize flows work before the first admin edit.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	pricelistdomain "github.com/hoikulink/tsumugi/internal/pricelist/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const starterLabel = "starter"

// EnsureStarterPriceList inserts the starter price list when no price list
// exists yet. Installs with history are left untouched.
func EnsureStarterPriceList(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&pricelistdomain.PriceList{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		list := pricelistdomain.PriceList{
			ID:    node.Generate(),
			Label: starterLabel,
			BasicPrices: datatypes.JSONMap{
				"1": int64(20000),
				"2": int64(35000),
				"3": int64(45000),
				"4": int64(50000),
				"5": int64(55000),
			},
			SpotPrices: datatypes.JSONMap{
				pricelistdomain.SpotSlotFull: int64(8000),
			},
			OptionPrices: datatypes.JSONMap{
				"lunch":      int64(600),
				"dinner":     int64(600),
				"school_car": int64(300),
				"home_car":   int64(300),
				"lesson_car": int64(500),
			},
			CreatedAt: time.Now().UTC(),
		}
		return tx.Create(&list).Error
	})
}
