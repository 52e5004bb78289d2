package models

import "time"

// Message is a direct message between two confirmed friends. SentOn is
// assigned by the server at creation; only Content and IsNew may change
// afterwards.
type Message struct {
	ID         uint   `gorm:"primarykey"`
	Content    string `gorm:"not null"`
	FromUserID uint   `gorm:"not null;index"`
	ToUserID   uint   `gorm:"not null;index"`
	IsNew      bool   `gorm:"not null;default:true"`

	SentOn time.Time `gorm:"autoCreateTime;index"`

	FromUser User `gorm:"foreignKey:FromUserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	ToUser   User `gorm:"foreignKey:ToUserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
