package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// PortalConfig holds operational knobs the front desk adjusts without a
// redeploy: the reservation change cutoff and the default note stamped on
// finalized invoices.
type PortalConfig struct {
	Reservation ReservationConfig `mapstructure:"reservation"`
	Invoice     InvoiceConfig     `mapstructure:"invoice"`
}

type ReservationConfig struct {
	// CutoffDays blocks guardians (never admins) from changing reservations
	// fewer than this many days before the date. Zero disables the cutoff.
	CutoffDays int `mapstructure:"cutoffDays"`
}

type InvoiceConfig struct {
	DefaultNote string `mapstructure:"defaultNote"`
}

func DefaultPortalConfig() PortalConfig {
	return PortalConfig{
		Reservation: ReservationConfig{CutoffDays: 0},
		Invoice:     InvoiceConfig{DefaultNote: ""},
	}
}

type PortalConfigHolder struct {
	current atomic.Value // holds PortalConfig
}

// NewPortalConfigHolder reads portal.yml and keeps it hot-reloaded; edits to
// the file take effect on the next request without a restart.
func NewPortalConfigHolder() (*PortalConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("portal")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/tsumugi/config")
	v.AddConfigPath("/etc/tsumugi")
	v.AddConfigPath(".")

	v.SetEnvPrefix("TSUMUGI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultPortalConfig()
		v.SetDefault("portal.reservation", defaults.Reservation)
		v.SetDefault("portal.invoice", defaults.Invoice)
	}

	var cfg PortalConfig
	if err := v.UnmarshalKey("portal", &cfg); err != nil {
		return nil, err
	}
	if err := validatePortalConfig(cfg); err != nil {
		return nil, err
	}

	holder := &PortalConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated PortalConfig
		if err := v.UnmarshalKey("portal", &updated); err != nil {
			log.Printf("[portal-config] reload failed: %v", err)
			return
		}
		if err := validatePortalConfig(updated); err != nil {
			log.Printf("[portal-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[portal-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *PortalConfigHolder) Get() PortalConfig {
	return h.current.Load().(PortalConfig)
}

// NewStaticPortalConfigHolder returns a holder pinned to cfg, for tests.
func NewStaticPortalConfigHolder(cfg PortalConfig) *PortalConfigHolder {
	holder := &PortalConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func validatePortalConfig(cfg PortalConfig) error {
	if cfg.Reservation.CutoffDays < 0 {
		return errors.New("portal.reservation.cutoffDays cannot be negative")
	}
	return nil
}
