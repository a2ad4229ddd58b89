// Package domain contains per-day reservation records and their add-on
// option selections.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Kind distinguishes planned weekly attendance from one-off spot days.
type Kind string

const (
	KindBasic Kind = "basic"
	KindSpot  Kind = "spot"
)

// OptionType identifies an add-on selection. The vocabulary is fixed and must
// match the price list's option keys exactly.
type OptionType string

const (
	OptionLunch     OptionType = "lunch"
	OptionDinner    OptionType = "dinner"
	OptionSchoolCar OptionType = "school_car"
	OptionHomeCar   OptionType = "home_car"
	OptionLessonCar OptionType = "lesson_car"
)

// KnownOptionTypes lists every billable option type in presentation order.
func KnownOptionTypes() []OptionType {
	return []OptionType{OptionLunch, OptionDinner, OptionSchoolCar, OptionHomeCar, OptionLessonCar}
}

// Counted reports whether the option carries an explicit count. Meal flags
// contribute exactly one per day they appear; transport options contribute
// their count.
func (t OptionType) Counted() bool {
	switch t {
	case OptionSchoolCar, OptionHomeCar, OptionLessonCar:
		return true
	default:
		return false
	}
}

// Known reports whether the type belongs to the billable vocabulary.
func (t OptionType) Known() bool {
	switch t {
	case OptionLunch, OptionDinner, OptionSchoolCar, OptionHomeCar, OptionLessonCar:
		return true
	default:
		return false
	}
}

// Reservation is one child-day. At most one reservation exists per
// (child, date).
type Reservation struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	ChildID   snowflake.ID `gorm:"not null;uniqueIndex:ux_reservation_child_date"`
	Date      time.Time    `gorm:"not null;uniqueIndex:ux_reservation_child_date"`
	Kind      Kind         `gorm:"type:text;not null"`
	Options   []Option     `gorm:"foreignKey:ReservationID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Reservation) TableName() string { return "reservations" }

// Option is one add-on selection attached to a reservation. PickupTime only
// applies to transport options; Label is free text for the lesson transport.
type Option struct {
	ID            snowflake.ID `gorm:"primaryKey"`
	ReservationID snowflake.ID `gorm:"not null;index"`
	OptionType    OptionType   `gorm:"type:text;not null"`
	Count         int64        `gorm:"not null;default:1"`
	PickupTime    *string      `gorm:"type:text"`
	Label         *string      `gorm:"type:text"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Option) TableName() string { return "reservation_options" }
