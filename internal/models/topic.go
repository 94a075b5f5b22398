package models

import "time"

type Topic struct {
	ID          int       `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"unique;not null" json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Topicable links a topic to a question or article.
type Topicable struct {
	ID            int       `gorm:"primaryKey" json:"id"`
	TopicID       int       `gorm:"not null;uniqueIndex:uniq_topicable,priority:1" json:"topic_id"`
	TopicableID   int       `gorm:"not null;uniqueIndex:uniq_topicable,priority:2" json:"topicable_id"`
	TopicableType string    `gorm:"size:16;not null;uniqueIndex:uniq_topicable,priority:3" json:"topicable_type"`
	CreatedAt     time.Time `json:"created_at"`
}

type CreateTopicRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
