package models

import "time"

// Friendship records that User is a friend of FriendOf. Rows are
// one-directional: the FriendOf party owns the row and is the only one who
// may set the private nickname or the blocked flag.
//
// A row may only be created once an accepted FriendRequest exists between the
// same pair of users. It survives deletion of that request.
type Friendship struct {
	ID         uint `gorm:"primarykey"`
	UserID     uint `gorm:"not null;index;uniqueIndex:uq_friendship_pair"`
	FriendOfID uint `gorm:"not null;index;uniqueIndex:uq_friendship_pair"`

	// Nickname is a private label only ever shown to the FriendOf owner.
	Nickname  *string `gorm:"size:255"`
	IsBlocked bool    `gorm:"not null;default:false"`

	StartDate time.Time `gorm:"autoCreateTime"`

	User     User `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	FriendOf User `gorm:"foreignKey:FriendOfID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
