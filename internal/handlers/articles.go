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

type ArticleHandler struct {
	db      *gorm.DB
	engine  *vote.Engine
	follows *follow.Service
}

func NewArticleHandler(db *gorm.DB, engine *vote.Engine, follows *follow.Service) *ArticleHandler {
	return &ArticleHandler{db: db, engine: engine, follows: follows}
}

// GetArticles returns a paginated listing with relationship blocks.
func (h *ArticleHandler) GetArticles(c *gin.Context) {
	params := pagination.FromQuery(c.Query("page"), c.Query("per_page"))

	query := h.db.Model(&models.Article{}).Preload("User").Order("created_at desc")
	if userID := c.Query("user_id"); userID != "" {
		query = query.Where("user_id = ?", userID)
	}

	page, err := pagination.Paginate[models.Article](query, params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch articles"})
		return
	}

	ids := make([]int, 0, len(page.Data))
	for _, a := range page.Data {
		ids = append(ids, a.ID)
	}

	votings, err := h.engine.VotingInRelationship(ids, vote.KindArticle, viewerID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch vote relationships"})
		return
	}
	followings, err := h.follows.IsFollowingInRelationship(ids, follow.KindArticle, viewerID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch follow relationships"})
		return
	}

	data := make([]gin.H, 0, len(page.Data))
	for _, a := range page.Data {
		data = append(data, gin.H{
			"id":         a.ID,
			"title":      a.Title,
			"content":    a.Content,
			"user_id":    a.UserID,
			"user":       a.User,
			"vote_count": a.VoteCount,
			"created_at": a.CreatedAt,
			"updated_at": a.UpdatedAt,
			"relationship": gin.H{
				"voting":       votings[a.ID],
				"is_following": followings[a.ID],
			},
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": data, "pagination": page.Pagination})
}

// GetArticle returns a single article by ID
func (h *ArticleHandler) GetArticle(c *gin.Context) {
	var article models.Article
	if err := h.db.Preload("User").First(&article, c.Param("id")).Error; err != nil {
		c.JSON(apperr.ErrArticleNotFound.Status, apperr.Payload(apperr.ErrArticleNotFound))
		return
	}

	votings, _ := h.engine.VotingInRelationship([]int{article.ID}, vote.KindArticle, viewerID(c))
	followings, _ := h.follows.IsFollowingInRelationship([]int{article.ID}, follow.KindArticle, viewerID(c))

	var topicIDs []int
	h.db.Model(&models.Topicable{}).
		Where("topicable_id = ? AND topicable_type = ?", article.ID, "article").
		Pluck("topic_id", &topicIDs)

	c.JSON(http.StatusOK, gin.H{
		"id":         article.ID,
		"title":      article.Title,
		"content":    article.Content,
		"user_id":    article.UserID,
		"user":       article.User,
		"vote_count": article.VoteCount,
		"topic_ids":  topicIDs,
		"created_at": article.CreatedAt,
		"updated_at": article.UpdatedAt,
		"relationship": gin.H{
			"voting":       votings[article.ID],
			"is_following": followings[article.ID],
		},
	})
}

// CreateArticle creates a new article (PROTECTED)
func (h *ArticleHandler) CreateArticle(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input models.CreateArticleRequest
	if err := c.ShouldBindJSON(&input); err != nil || input.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}

	article := models.Article{
		Title:   input.Title,
		Content: input.Content,
		UserID:  userID,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&article).Error; err != nil {
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
			link := models.Topicable{TopicID: topicID, TopicableID: article.ID, TopicableType: "article"}
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

	h.db.Preload("User").First(&article, article.ID)
	c.JSON(http.StatusCreated, article)
}

// UpdateArticle updates an article (PROTECTED - author only)
func (h *ArticleHandler) UpdateArticle(c *gin.Context) {
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

	var article models.Article
	if err := h.db.First(&article, c.Param("id")).Error; err != nil {
		c.JSON(apperr.ErrArticleNotFound.Status, apperr.Payload(apperr.ErrArticleNotFound))
		return
	}

	if article.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only edit your own articles"})
		return
	}

	if input.Title != "" {
		article.Title = input.Title
	}
	if input.Content != "" {
		article.Content = input.Content
	}

	h.db.Save(&article)
	h.db.Preload("User").First(&article, article.ID)
	c.JSON(http.StatusOK, article)
}

// DeleteArticle deletes an article and its dependents (PROTECTED - author only)
func (h *ArticleHandler) DeleteArticle(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var article models.Article
	if err := h.db.First(&article, c.Param("id")).Error; err != nil {
		c.JSON(apperr.ErrArticleNotFound.Status, apperr.Payload(apperr.ErrArticleNotFound))
		return
	}

	if article.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own articles"})
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("votable_id = ? AND votable_type = ?", article.ID, "article").
			Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("followable_id = ? AND followable_type = ?", article.ID, "article").
			Delete(&models.Follow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("topicable_id = ? AND topicable_type = ?", article.ID, "article").
			Delete(&models.Topicable{}).Error; err != nil {
			return err
		}
		return tx.Delete(&article).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete article"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Article deleted successfully"})
}
