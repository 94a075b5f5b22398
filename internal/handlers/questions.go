package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/guxingjinguang/mdclub/internal/apperr"
	"github.com/guxingjinguang/mdclub/internal/follow"
	"github.com/guxingjinguang/mdclub/internal/models"
	"github.com/guxingjinguang/mdclub/internal/pagination"
	"github.com/guxingjinguang/mdclub/internal/vote"
)

type QuestionHandler struct {
	db      *gorm.DB
	engine  *vote.Engine
	follows *follow.Service
}

func NewQuestionHandler(db *gorm.DB, engine *vote.Engine, follows *follow.Service) *QuestionHandler {
	return &QuestionHandler{db: db, engine: engine, follows: follows}
}

// GetQuestions returns a paginated listing, newest first, with per-viewer
// relationship blocks (my vote, am I following) computed in batch.
func (h *QuestionHandler) GetQuestions(c *gin.Context) {
	params := pagination.FromQuery(c.Query("page"), c.Query("per_page"))

	query := h.db.Model(&models.Question{}).Preload("User").Order("created_at desc")
	if userID := c.Query("user_id"); userID != "" {
		query = query.Where("user_id = ?", userID)
	}

	page, err := pagination.Paginate[models.Question](query, params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch questions"})
		return
	}

	ids := make([]int, 0, len(page.Data))
	for _, q := range page.Data {
		ids = append(ids, q.ID)
	}

	votings, err := h.engine.VotingInRelationship(ids, vote.KindQuestion, viewerID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch vote relationships"})
		return
	}
	followings, err := h.follows.IsFollowingInRelationship(ids, follow.KindQuestion, viewerID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch follow relationships"})
		return
	}

	data := make([]gin.H, 0, len(page.Data))
	for _, q := range page.Data {
		data = append(data, gin.H{
			"id":           q.ID,
			"title":        q.Title,
			"content":      q.Content,
			"user_id":      q.UserID,
			"user":         q.User,
			"vote_count":   q.VoteCount,
			"answer_count": q.AnswerCount,
			"created_at":   q.CreatedAt,
			"updated_at":   q.UpdatedAt,
			"relationship": gin.H{
				"voting":       votings[q.ID],
				"is_following": followings[q.ID],
			},
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": data, "pagination": page.Pagination})
}

// GetQuestion returns a single question by ID
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	var question models.Question
	if err := h.db.Preload("User").First(&question, c.Param("id")).Error; err != nil {
		c.JSON(apperr.ErrQuestionNotFound.Status, apperr.Payload(apperr.ErrQuestionNotFound))
		return
	}

	votings, _ := h.engine.VotingInRelationship([]int{question.ID}, vote.KindQuestion, viewerID(c))
	followings, _ := h.follows.IsFollowingInRelationship([]int{question.ID}, follow.KindQuestion, viewerID(c))

	var topicIDs []int
	h.db.Model(&models.Topicable{}).
		Where("topicable_id = ? AND topicable_type = ?", question.ID, "question").
		Pluck("topic_id", &topicIDs)

	c.JSON(http.StatusOK, gin.H{
		"id":           question.ID,
		"title":        question.Title,
		"content":      question.Content,
		"user_id":      question.UserID,
		"user":         question.User,
		"vote_count":   question.VoteCount,
		"answer_count": question.AnswerCount,
		"topic_ids":    topicIDs,
		"created_at":   question.CreatedAt,
		"updated_at":   question.UpdatedAt,
		"relationship": gin.H{
			"voting":       votings[question.ID],
			"is_following": followings[question.ID],
		},
	})
}

// CreateQuestion creates a new question (PROTECTED)
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input models.CreateQuestionRequest
	if err := c.ShouldBindJSON(&input); err != nil || input.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}

	question := models.Question{
		Title:   input.Title,
		Content: input.Content,
		UserID:  userID,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&question).Error; err != nil {
			return err
		}
		for _, topicID := range input.TopicIDs {
			var n int64
			if err := tx.Model(&models.Topic{}).Where("id = ?", topicID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return apperr.ErrTopicNotFound
			}
			link := models.Topicable{TopicID: topicID, TopicableID: question.ID, TopicableType: "question"}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(apperr.StatusOf(err), apperr.Payload(err))
		return
	}

	h.db.Preload("User").First(&question, question.ID)
	c.JSON(http.StatusCreated, question)
}

// UpdateQuestion updates a question (PROTECTED - author only)
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var question models.Question
	if err := h.db.First(&question, c.Param("id")).Error; err != nil {
		c.JSON(apperr.ErrQuestionNotFound.Status, apperr.Payload(apperr.ErrQuestionNotFound))
		return
	}

	if question.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only edit your own questions"})
		return
	}

	if input.Title != "" {
		question.Title = input.Title
	}
	if input.Content != "" {
		question.Content = input.Content
	}

	h.db.Save(&question)
	h.db.Preload("User").First(&question, question.ID)
	c.JSON(http.StatusOK, question)
}

// DeleteQuestion deletes a question and its dependents (PROTECTED - author only)
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var question models.Question
	if err := h.db.First(&question, c.Param("id")).Error; err != nil {
		c.JSON(apperr.ErrQuestionNotFound.Status, apperr.Payload(apperr.ErrQuestionNotFound))
		return
	}

	if question.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own questions"})
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("votable_id = ? AND votable_type = ?", question.ID, "question").
			Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("followable_id = ? AND followable_type = ?", question.ID, "question").
			Delete(&models.Follow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("topicable_id = ? AND topicable_type = ?", question.ID, "question").
			Delete(&models.Topicable{}).Error; err != nil {
			return err
		}
		return tx.Delete(&question).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete question"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Question deleted successfully"})
}
