package models

import "time"

// Follow links a user to a followable target (question, article, topic or
// another user) via the same polymorphic pair the vote ledger uses.
type Follow struct {
	ID             int       `gorm:"primaryKey" json:"id"`
	UserID         int       `gorm:"not null;uniqueIndex:uniq_followable_user,priority:3" json:"user_id"`
	FollowableID   int       `gorm:"not null;uniqueIndex:uniq_followable_user,priority:1" json:"followable_id"`
	FollowableType string    `gorm:"size:16;not null;uniqueIndex:uniq_followable_user,priority:2" json:"followable_type"`
	CreatedAt      time.Time `json:"created_at"`
}
