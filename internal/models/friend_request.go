package models

import (
	"time"

	"gorm.io/gorm"
)

// FriendRequest is a directed edge from the sender to the recipient. At most
// one request may exist between any unordered pair of users, regardless of
// direction: {A→B} and {B→A} are mutually exclusive.
//
// An accepted request is never deleted automatically; it stays around as the
// provenance record for any Friendship later created from it.
type FriendRequest struct {
	ID         uint `gorm:"primarykey"`
	FromUserID uint `gorm:"not null;index"`
	ToUserID   uint `gorm:"not null;index"`

	// PairMin/PairMax hold the two user IDs in sorted order so that a single
	// composite unique index enforces pair uniqueness across both directions.
	// Maintained by the BeforeCreate hook; never written by callers.
	PairMin uint `gorm:"not null;uniqueIndex:uq_request_pair"`
	PairMax uint `gorm:"not null;uniqueIndex:uq_request_pair"`

	IsNew      bool `gorm:"not null;default:true"`
	IsAccepted bool `gorm:"not null;default:false"`

	CreatedOn time.Time `gorm:"autoCreateTime"`

	FromUser User `gorm:"foreignKey:FromUserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	ToUser   User `gorm:"foreignKey:ToUserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// BeforeCreate canonicalizes the pair columns backing the symmetric
// uniqueness constraint.
func (r *FriendRequest) BeforeCreate(tx *gorm.DB) error {
	if r.FromUserID <= r.ToUserID {
		r.PairMin, r.PairMax = r.FromUserID, r.ToUserID
	} else {
		r.PairMin, r.PairMax = r.ToUserID, r.FromUserID
	}
	return nil
}
