package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/guxingjinguang/mdclub/internal/database"
	"github.com/guxingjinguang/mdclub/internal/follow"
	"github.com/guxingjinguang/mdclub/internal/notify"
	"github.com/guxingjinguang/mdclub/internal/vote"
)

// Handler combines all handler types
type Handler struct {
	Auth     *AuthHandler
	Question *QuestionHandler
	Answer   *AnswerHandler
	Article  *ArticleHandler
	Comment  *CommentHandler
	Topic    *TopicHandler
	User     *UserHandler
	Vote     *VoteHandler
	Follow   *FollowHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(db *database.Database) *Handler {
	// Get the GORM DB instance from the service
	dbService := database.New()
	gormDB := dbService.GetDB()

	engine := vote.NewDefaultEngine(gormDB)
	follows := follow.NewService(gormDB)
	sms := notify.NewSMSVerifierFromEnv()

	return &Handler{
		Auth:     NewAuthHandler(gormDB, sms),
		Question: NewQuestionHandler(gormDB, engine, follows),
		Answer:   NewAnswerHandler(gormDB, engine),
		Article:  NewArticleHandler(gormDB, engine, follows),
		Comment:  NewCommentHandler(gormDB, engine),
		Topic:    NewTopicHandler(gormDB, follows),
		User:     NewUserHandler(gormDB, follows),
		Vote:     NewVoteHandler(engine, follows),
		Follow:   NewFollowHandler(gormDB, follows),
	}
}

func extractUserID(c *gin.Context) (int, bool) {
	raw, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	switch v := raw.(type) {
	case int:
		return v, true
	case uint:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// viewerID returns the authenticated user id or 0 when anonymous.
func viewerID(c *gin.Context) int {
	id, _ := extractUserID(c)
	return id
}
