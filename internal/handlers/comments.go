package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/guxingjinguang/mdclub/internal/apperr"
	"github.com/guxingjinguang/mdclub/internal/models"
	"github.com/guxingjinguang/mdclub/internal/pagination"
	"github.com/guxingjinguang/mdclub/internal/vote"
)

// CommentHandler serves comments for all three commentable kinds; the
// kind is bound at route registration, same as votes.
type CommentHandler struct {
	db     *gorm.DB
	engine *vote.Engine
}

func NewCommentHandler(db *gorm.DB, engine *vote.Engine) *CommentHandler {
	return &CommentHandler{db: db, engine: engine}
}

func (h *CommentHandler) commentableOrFail(kind string, id int) error {
	var (
		n   int64
		err error
	)
	switch kind {
	case "question":
		err = h.db.Model(&models.Question{}).Where("id = ?", id).Count(&n).Error
		if err == nil && n == 0 {
			return apperr.ErrQuestionNotFound
		}
	case "answer":
		err = h.db.Model(&models.Answer{}).Where("id = ?", id).Count(&n).Error
		if err == nil && n == 0 {
			return apperr.ErrAnswerNotFound
		}
	case "article":
		err = h.db.Model(&models.Article{}).Where("id = ?", id).Count(&n).Error
		if err == nil && n == 0 {
			return apperr.ErrArticleNotFound
		}
	}
	return err
}

// List handles GET /:id/comments for the bound commentable kind.
func (h *CommentHandler) List(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		commentableID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
			return
		}
		if err := h.commentableOrFail(kind, commentableID); err != nil {
			c.JSON(apperr.StatusOf(err), apperr.Payload(err))
			return
		}

		params := pagination.FromQuery(c.Query("page"), c.Query("per_page"))
		query := h.db.Model(&models.Comment{}).Preload("User").
			Where("commentable_id = ? AND commentable_type = ?", commentableID, kind).
			Order("created_at desc")

		page, err := pagination.Paginate[models.Comment](query, params)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
			return
		}

		ids := make([]int, 0, len(page.Data))
		for _, cm := range page.Data {
			ids = append(ids, cm.ID)
		}
		votings, err := h.engine.VotingInRelationship(ids, vote.KindComment, viewerID(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch vote relationships"})
			return
		}

		data := make([]gin.H, 0, len(page.Data))
		for _, cm := range page.Data {
			data = append(data, gin.H{
				"id":               cm.ID,
				"commentable_id":   cm.CommentableID,
				"commentable_type": cm.CommentableType,
				"content":          cm.Content,
				"user_id":          cm.UserID,
				"user":             cm.User,
				"vote_count":       cm.VoteCount,
				"created_at":       cm.CreatedAt,
				"updated_at":       cm.UpdatedAt,
				"relationship": gin.H{
					"voting": votings[cm.ID],
				},
			})
		}

		c.JSON(http.StatusOK, gin.H{"data": data, "pagination": page.Pagination})
	}
}

// Create handles POST /:id/comments for the bound commentable kind (PROTECTED).
func (h *CommentHandler) Create(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := extractUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		commentableID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
			return
		}

		var input models.CreateCommentRequest
		if err := c.ShouldBindJSON(&input); err != nil || input.Content == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Content is required"})
			return
		}

		if err := h.commentableOrFail(kind, commentableID); err != nil {
			c.JSON(apperr.StatusOf(err), apperr.Payload(err))
			return
		}

		comment := models.Comment{
			CommentableID:   commentableID,
			CommentableType: kind,
			Content:         input.Content,
			UserID:          userID,
		}
		if err := h.db.Create(&comment).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
			return
		}

		h.db.Preload("User").First(&comment, comment.ID)
		c.JSON(http.StatusCreated, comment)
	}
}

// Update handles PUT /comments/:id (PROTECTED - author only).
func (h *CommentHandler) Update(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var comment models.Comment
	if err := h.db.First(&comment, c.Param("id")).Error; err != nil {
		c.JSON(apperr.ErrCommentNotFound.Status, apperr.Payload(apperr.ErrCommentNotFound))
		return
	}

	if comment.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only edit your own comments"})
		return
	}

	comment.Content = input.Content
	h.db.Save(&comment)
	h.db.Preload("User").First(&comment, comment.ID)
	c.JSON(http.StatusOK, comment)
}

// Delete handles DELETE /comments/:id (PROTECTED - author only).
// The comment's ledger rows go with it.
func (h *CommentHandler) Delete(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var comment models.Comment
	if err := h.db.First(&comment, c.Param("id")).Error; err != nil {
		c.JSON(apperr.ErrCommentNotFound.Status, apperr.Payload(apperr.ErrCommentNotFound))
		return
	}

	if comment.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own comments"})
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("votable_id = ? AND votable_type = ?", comment.ID, "comment").
			Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		return tx.Delete(&comment).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}
