// Package domain contains persistence models for enrolled children and the
// guardian ownership boundary.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Child is an enrolled child. Every reservation, usage aggregate, and invoice
// is scoped by child ID, and a child belongs to exactly one guardian account.
type Child struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	GuardianID snowflake.ID `gorm:"not null;index"`
	Name       string       `gorm:"type:text;not null"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Child) TableName() string { return "children" }

// Actor identifies the already-authenticated caller. Identity and session
// handling live in the fronting layer; this package only decides whether the
// actor may touch a given child's records.
type Actor struct {
	UserID snowflake.ID
	Admin  bool
}

// CanAccess reports whether the actor may read or write the child's records.
func (a Actor) CanAccess(c *Child) bool {
	if a.Admin {
		return true
	}
	return c != nil && c.GuardianID == a.UserID
}

var (
	ErrNotFound  = errors.New("child_not_found")
	ErrForbidden = errors.New("forbidden")
)
