package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/guxingjinguang/mdclub/internal/apperr"
	"github.com/guxingjinguang/mdclub/internal/follow"
	"github.com/guxingjinguang/mdclub/internal/models"
)

type UserHandler struct {
	db      *gorm.DB
	follows *follow.Service
}

func NewUserHandler(db *gorm.DB, follows *follow.Service) *UserHandler {
	return &UserHandler{db: db, follows: follows}
}

// GetUserProfile returns a user's profile
func (h *UserHandler) GetUserProfile(c *gin.Context) {
	userID := c.Param("id")
	var user models.User

	if err := h.db.First(&user, userID).Error; err != nil {
		c.JSON(apperr.ErrUserNotFound.Status, apperr.Payload(apperr.ErrUserNotFound))
		return
	}

	// Follower/following counts over the polymorphic follow table
	var followerCount, followingCount int64
	h.db.Model(&models.Follow{}).
		Where("followable_id = ? AND followable_type = ?", user.ID, "user").
		Count(&followerCount)
	h.db.Model(&models.Follow{}).
		Where("user_id = ? AND followable_type = ?", user.ID, "user").
		Count(&followingCount)

	followings, _ := h.follows.IsFollowingInRelationship([]int{user.ID}, follow.KindUser, viewerID(c))

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"bio":      user.Bio,
			"avatar":   user.Avatar,
		},
		"follower_count":  followerCount,
		"following_count": followingCount,
		"relationship": gin.H{
			"is_following": followings[user.ID],
		},
	})
}

func (h *UserHandler) UpdateUserProfile(c *gin.Context) {
	userID := c.Param("id")

	authUserID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	// Check if user is updating their own profile
	if fmt.Sprintf("%d", authUserID) != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only update your own profile"})
		return
	}

	var input struct {
		Bio    string `json:"bio"`
		Avatar string `json:"avatar"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		c.JSON(apperr.ErrUserNotFound.Status, apperr.Payload(apperr.ErrUserNotFound))
		return
	}

	if input.Bio != "" {
		user.Bio = input.Bio
	}
	if input.Avatar != "" {
		user.Avatar = input.Avatar
	}

	if err := h.db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"bio":      user.Bio,
		"avatar":   user.Avatar,
	})
}
