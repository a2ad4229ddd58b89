package migration

import (
	childdomain "github.com/hoikulink/tsumugi/internal/child/domain"
	"github.com/hoikulink/tsumugi/internal/config"
	invoicedomain "github.com/hoikulink/tsumugi/internal/invoice/domain"
	pricelistdomain "github.com/hoikulink/tsumugi/internal/pricelist/domain"
	reservationdomain "github.com/hoikulink/tsumugi/internal/reservation/domain"
	"github.com/hoikulink/tsumugi/internal/seed"
	usagedomain "github.com/hoikulink/tsumugi/internal/usage/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// Versioned migrations are written against postgres; other
			// drivers (dev and embedded installs) derive the schema from
			// the models.
			if err := conn.AutoMigrate(
				&childdomain.Child{},
				&pricelistdomain.PriceList{},
				&usagedomain.BasicUsage{},
				&reservationdomain.Reservation{},
				&reservationdomain.Option{},
				&usagedomain.OptionUsage{},
				&invoicedomain.Invoice{},
			); err != nil {
				return err
			}
		}

		if cfg.SeedPriceList {
			return seed.EnsureStarterPriceList(conn)
		}
		return nil
	}),
)
