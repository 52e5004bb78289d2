package models

import "gorm.io/gorm"

// Bounds of the contact key space. Keys are always nine digits so they can be
// read out loud or typed without leading-zero ambiguity.
const (
	ContactKeyMin int64 = 100000000
	ContactKeyMax int64 = 999999999
)

// User represents a registered account.
type User struct {
	gorm.Model
	Username     string `gorm:"size:255;unique;not null"`
	Email        string `gorm:"size:255;unique;not null"`
	PasswordHash string `gorm:"size:255;not null"`

	// ContactKey is the number a user shares out-of-band so others can
	// address a friend request to them without knowing their internal ID.
	// Immutable once set.
	ContactKey int64 `gorm:"uniqueIndex;not null"`

	IsActive    bool `gorm:"not null;default:true"`
	IsStaff     bool `gorm:"not null;default:false"`
	IsSuperuser bool `gorm:"not null;default:false"`
}
