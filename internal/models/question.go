package models

import "time"

type Question struct {
	ID          int       `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Content     string    `json:"content"`
	UserID      int       `json:"user_id"`
	User        User      `gorm:"foreignKey:UserID" json:"user"`
	VoteCount   int       `gorm:"not null;default:0" json:"vote_count"`
	AnswerCount int       `gorm:"not null;default:0" json:"answer_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateQuestionRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	TopicIDs []int  `json:"topic_ids"`
}
