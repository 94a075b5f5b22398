package models

import "time"

// Comment attaches to a question, answer or article via the polymorphic
// (commentable_id, commentable_type) pair. Comments are themselves voteable.
type Comment struct {
	ID              int       `gorm:"primaryKey" json:"id"`
	CommentableID   int       `gorm:"not null;index:idx_commentable" json:"commentable_id"`
	CommentableType string    `gorm:"size:16;not null;index:idx_commentable" json:"commentable_type"`
	Content         string    `gorm:"not null" json:"content"`
	UserID          int       `json:"user_id"`
	User            User      `gorm:"foreignKey:UserID" json:"user"`
	VoteCount       int       `gorm:"not null;default:0" json:"vote_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type CreateCommentRequest struct {
	Content string `json:"content"`
}
