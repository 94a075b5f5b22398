// Package follow keeps the follow graph: users following questions,
// articles, topics and other users through one polymorphic table.
package follow

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/guxingjinguang/mdclub/internal/models"
	"github.com/guxingjinguang/mdclub/internal/pagination"
)

type Kind string

const (
	KindQuestion Kind = "question"
	KindArticle  Kind = "article"
	KindTopic    Kind = "topic"
	KindUser     Kind = "user"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindQuestion, KindArticle, KindTopic, KindUser:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown followable kind %q", s)
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Follow records the edge. Following something twice collapses to a
// single edge via the unique index.
func (s *Service) Follow(userID, followableID int, kind Kind) error {
	f := models.Follow{
		UserID:         userID,
		FollowableID:   followableID,
		FollowableType: string(kind),
	}
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&f).Error
}

// Unfollow removes the edge; unfollowing something never followed is a
// silent success.
func (s *Service) Unfollow(userID, followableID int, kind Kind) error {
	return s.db.
		Where("user_id = ? AND followable_id = ? AND followable_type = ?",
			userID, followableID, string(kind)).
		Delete(&models.Follow{}).Error
}

// IsFollowingInRelationship answers "is the viewer following each of
// these ids" with one batched query, defaulting absent ids to false. Same
// shape as the vote engine's VotingInRelationship.
func (s *Service) IsFollowingInRelationship(followableIDs []int, kind Kind, viewerID int) (map[int]bool, error) {
	result := make(map[int]bool, len(followableIDs))
	for _, id := range followableIDs {
		result[id] = false
	}
	if len(followableIDs) == 0 || viewerID == 0 {
		return result, nil
	}

	var rows []models.Follow
	err := s.db.
		Where("user_id = ? AND followable_type = ? AND followable_id IN ?",
			viewerID, string(kind), followableIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, f := range rows {
		result[f.FollowableID] = true
	}
	return result, nil
}

// Followers lists users following a target, newest first.
func (s *Service) Followers(followableID int, kind Kind, params pagination.Params) (*pagination.Page[models.User], error) {
	base := s.db.Model(&models.Follow{}).
		Joins("JOIN users ON users.id = follows.user_id").
		Where("follows.followable_id = ? AND follows.followable_type = ?", followableID, string(kind)).
		Where("users.disabled_at IS NULL")

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, err
	}

	followers := []models.User{}
	err := base.Select("users.*").
		Order("follows.created_at DESC").
		Offset((params.Page - 1) * params.PerPage).
		Limit(params.PerPage).
		Find(&followers).Error
	if err != nil {
		return nil, err
	}

	return &pagination.Page[models.User]{
		Data:       followers,
		Pagination: pagination.MetaFor(params, total),
	}, nil
}
