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

type AnswerHandler struct {
	db     *gorm.DB
	engine *vote.Engine
}

func NewAnswerHandler(db *gorm.DB, engine *vote.Engine) *AnswerHandler {
	return &AnswerHandler{db: db, engine: engine}
}

// GetAnswers returns a question's answers, highest voted first, with the
// viewer's vote attached per answer.
func (h *AnswerHandler) GetAnswers(c *gin.Context) {
	questionID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}

	var question models.Question
	if err := h.db.First(&question, questionID).Error; err != nil {
		c.JSON(apperr.ErrQuestionNotFound.Status, apperr.Payload(apperr.ErrQuestionNotFound))
		return
	}

	params := pagination.FromQuery(c.Query("page"), c.Query("per_page"))
	query := h.db.Model(&models.Answer{}).Preload("User").
		Where("question_id = ?", questionID).
		Order("vote_count desc, created_at desc")

	page, err := pagination.Paginate[models.Answer](query, params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch answers"})
		return
	}

	ids := make([]int, 0, len(page.Data))
	for _, a := range page.Data {
		ids = append(ids, a.ID)
	}
	votings, err := h.engine.VotingInRelationship(ids, vote.KindAnswer, viewerID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch vote relationships"})
		return
	}

	data := make([]gin.H, 0, len(page.Data))
	for _, a := range page.Data {
		data = append(data, gin.H{
			"id":          a.ID,
			"question_id": a.QuestionID,
			"content":     a.Content,
			"user_id":     a.UserID,
			"user":        a.User,
			"vote_count":  a.VoteCount,
			"created_at":  a.CreatedAt,
			"updated_at":  a.UpdatedAt,
			"relationship": gin.H{
				"voting": votings[a.ID],
			},
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": data, "pagination": page.Pagination})
}

// CreateAnswer posts an answer to a question (PROTECTED)
func (h *AnswerHandler) CreateAnswer(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	questionID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}

	var input models.CreateAnswerRequest
	if err := c.ShouldBindJSON(&input); err != nil || input.Content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Content is required"})
		return
	}

	var question models.Question
	if err := h.db.First(&question, questionID).Error; err != nil {
		c.JSON(apperr.ErrQuestionNotFound.Status, apperr.Payload(apperr.ErrQuestionNotFound))
		return
	}

	answer := models.Answer{
		QuestionID: questionID,
		Content:    input.Content,
		UserID:     userID,
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&answer).Error; err != nil {
			return err
		}
		return tx.Model(&models.Question{}).Where("id = ?", questionID).
			UpdateColumn("answer_count", gorm.Expr("answer_count + 1")).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create answer"})
		return
	}

	h.db.Preload("User").First(&answer, answer.ID)
	c.JSON(http.StatusCreated, answer)
}

// UpdateAnswer updates an answer (PROTECTED - author only)
func (h *AnswerHandler) UpdateAnswer(c *gin.Context) {
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

	var answer models.Answer
	if err := h.db.First(&answer, c.Param("id")).Error; err != nil {
		c.JSON(apperr.ErrAnswerNotFound.Status, apperr.Payload(apperr.ErrAnswerNotFound))
		return
	}

	if answer.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only edit your own answers"})
		return
	}

	answer.Content = input.Content
	h.db.Save(&answer)
	h.db.Preload("User").First(&answer, answer.ID)
	c.JSON(http.StatusOK, answer)
}

// DeleteAnswer deletes an answer and its votes (PROTECTED - author only)
func (h *AnswerHandler) DeleteAnswer(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var answer models.Answer
	if err := h.db.First(&answer, c.Param("id")).Error; err != nil {
		c.JSON(apperr.ErrAnswerNotFound.Status, apperr.Payload(apperr.ErrAnswerNotFound))
		return
	}

	if answer.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own answers"})
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("votable_id = ? AND votable_type = ?", answer.ID, "answer").
			Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&answer).Error; err != nil {
			return err
		}
		return tx.Model(&models.Question{}).Where("id = ?", answer.QuestionID).
			UpdateColumn("answer_count", gorm.Expr("answer_count - 1")).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete answer"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Answer deleted successfully"})
}
