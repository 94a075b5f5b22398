package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/guxingjinguang/mdclub/internal/apperr"
	"github.com/guxingjinguang/mdclub/internal/follow"
	"github.com/guxingjinguang/mdclub/internal/models"
	"github.com/guxingjinguang/mdclub/internal/pagination"
)

// FollowHandler serves follow/unfollow and follower listings for all
// followable kinds; the kind is bound at route registration.
type FollowHandler struct {
	db      *gorm.DB
	follows *follow.Service
}

func NewFollowHandler(db *gorm.DB, follows *follow.Service) *FollowHandler {
	return &FollowHandler{db: db, follows: follows}
}

func (h *FollowHandler) followableOrFail(kind follow.Kind, id int) error {
	var (
		n   int64
		err error
	)
	switch kind {
	case follow.KindQuestion:
		err = h.db.Model(&models.Question{}).Where("id = ?", id).Count(&n).Error
		if err == nil && n == 0 {
			return apperr.ErrQuestionNotFound
		}
	case follow.KindArticle:
		err = h.db.Model(&models.Article{}).Where("id = ?", id).Count(&n).Error
		if err == nil && n == 0 {
			return apperr.ErrArticleNotFound
		}
	case follow.KindTopic:
		err = h.db.Model(&models.Topic{}).Where("id = ?", id).Count(&n).Error
		if err == nil && n == 0 {
			return apperr.ErrTopicNotFound
		}
	case follow.KindUser:
		err = h.db.Model(&models.User{}).Where("id = ?", id).Count(&n).Error
		if err == nil && n == 0 {
			return apperr.ErrUserNotFound
		}
	}
	return err
}

// Follow handles POST /:id/follow for the bound kind (PROTECTED).
func (h *FollowHandler) Follow(kind follow.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := extractUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		targetID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
			return
		}

		if kind == follow.KindUser && targetID == userID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot follow yourself"})
			return
		}

		if err := h.followableOrFail(kind, targetID); err != nil {
			c.JSON(apperr.StatusOf(err), apperr.Payload(err))
			return
		}

		if err := h.follows.Follow(userID, targetID, kind); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to follow"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Successfully followed"})
	}
}

// Unfollow handles DELETE /:id/follow for the bound kind (PROTECTED).
func (h *FollowHandler) Unfollow(kind follow.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := extractUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		targetID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
			return
		}

		if err := h.follows.Unfollow(userID, targetID, kind); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unfollow"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Successfully unfollowed"})
	}
}

// Followers handles GET /:id/followers for the bound kind.
func (h *FollowHandler) Followers(kind follow.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		targetID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
			return
		}

		if err := h.followableOrFail(kind, targetID); err != nil {
			c.JSON(apperr.StatusOf(err), apperr.Payload(err))
			return
		}

		params := pagination.FromQuery(c.Query("page"), c.Query("per_page"))
		page, err := h.follows.Followers(targetID, kind, params)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch followers"})
			return
		}

		data := make([]gin.H, 0, len(page.Data))
		for _, u := range page.Data {
			data = append(data, gin.H{
				"id":       u.ID,
				"username": u.Username,
				"avatar":   u.Avatar,
			})
		}
		c.JSON(http.StatusOK, gin.H{"data": data, "pagination": page.Pagination})
	}
}
