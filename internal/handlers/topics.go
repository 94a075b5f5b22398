package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/guxingjinguang/mdclub/internal/apperr"
	"github.com/guxingjinguang/mdclub/internal/follow"
	"github.com/guxingjinguang/mdclub/internal/models"
	"github.com/guxingjinguang/mdclub/internal/pagination"
)

type TopicHandler struct {
	db      *gorm.DB
	follows *follow.Service
}

func NewTopicHandler(db *gorm.DB, follows *follow.Service) *TopicHandler {
	return &TopicHandler{db: db, follows: follows}
}

// GetTopics returns a paginated topic listing with the viewer's follow state.
func (h *TopicHandler) GetTopics(c *gin.Context) {
	params := pagination.FromQuery(c.Query("page"), c.Query("per_page"))
	query := h.db.Model(&models.Topic{}).Order("name asc")

	page, err := pagination.Paginate[models.Topic](query, params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch topics"})
		return
	}

	ids := make([]int, 0, len(page.Data))
	for _, t := range page.Data {
		ids = append(ids, t.ID)
	}
	followings, err := h.follows.IsFollowingInRelationship(ids, follow.KindTopic, viewerID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch follow relationships"})
		return
	}

	data := make([]gin.H, 0, len(page.Data))
	for _, t := range page.Data {
		data = append(data, gin.H{
			"id":          t.ID,
			"name":        t.Name,
			"description": t.Description,
			"created_at":  t.CreatedAt,
			"relationship": gin.H{
				"is_following": followings[t.ID],
			},
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": data, "pagination": page.Pagination})
}

// GetTopic returns a single topic by ID
func (h *TopicHandler) GetTopic(c *gin.Context) {
	var topic models.Topic
	if err := h.db.First(&topic, c.Param("id")).Error; err != nil {
		c.JSON(apperr.ErrTopicNotFound.Status, apperr.Payload(apperr.ErrTopicNotFound))
		return
	}

	followings, _ := h.follows.IsFollowingInRelationship([]int{topic.ID}, follow.KindTopic, viewerID(c))

	c.JSON(http.StatusOK, gin.H{
		"id":          topic.ID,
		"name":        topic.Name,
		"description": topic.Description,
		"created_at":  topic.CreatedAt,
		"relationship": gin.H{
			"is_following": followings[topic.ID],
		},
	})
}

// CreateTopic creates a new topic (PROTECTED)
func (h *TopicHandler) CreateTopic(c *gin.Context) {
	if _, ok := extractUserID(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input models.CreateTopicRequest
	if err := c.ShouldBindJSON(&input); err != nil || input.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
		return
	}

	topic := models.Topic{Name: input.Name, Description: input.Description}
	if err := h.db.Create(&topic).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Topic already exists"})
		return
	}

	c.JSON(http.StatusCreated, topic)
}
