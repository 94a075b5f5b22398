package models

import "time"

// Vote is the ledger entry: one row per (votable, user). The composite
// unique index is the backstop against concurrent duplicate first votes;
// the engine relies on it, not only on its own read-then-write check.
// CreatedAt is bumped when the vote flips direction, so voter listings
// order by most recent state change.
type Vote struct {
	ID          int       `gorm:"primaryKey" json:"id"`
	VotableID   int       `gorm:"not null;uniqueIndex:uniq_votable_user,priority:1" json:"votable_id"`
	VotableType string    `gorm:"size:16;not null;uniqueIndex:uniq_votable_user,priority:2" json:"votable_type"`
	UserID      int       `gorm:"not null;uniqueIndex:uniq_votable_user,priority:3" json:"user_id"`
	Type        string    `gorm:"size:4;not null" json:"type"`
	CreatedAt   time.Time `json:"created_at"`
}
