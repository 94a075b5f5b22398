package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/guxingjinguang/mdclub/internal/apperr"
	"github.com/guxingjinguang/mdclub/internal/follow"
	"github.com/guxingjinguang/mdclub/internal/pagination"
	"github.com/guxingjinguang/mdclub/internal/vote"
)

// VoteHandler exposes the voting engine over each voteable entity's
// routes. One handler serves all four kinds; the kind is bound when the
// route is registered.
type VoteHandler struct {
	engine  *vote.Engine
	follows *follow.Service
}

func NewVoteHandler(engine *vote.Engine, follows *follow.Service) *VoteHandler {
	return &VoteHandler{engine: engine, follows: follows}
}

// Add handles POST /:id/votes with body {"type": "up"|"down"}.
func (h *VoteHandler) Add(kind vote.Kind) gin.HandlerFunc {
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

		var input struct {
			Type string `json:"type"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		if err := h.engine.AddVote(userID, targetID, kind, vote.Type(input.Type)); err != nil {
			c.JSON(apperr.StatusOf(err), apperr.Payload(err))
			return
		}

		count, err := h.engine.VoteCount(targetID, kind)
		if err != nil {
			c.JSON(apperr.StatusOf(err), apperr.Payload(err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Vote recorded", "vote_count": count})
	}
}

// Delete handles DELETE /:id/votes. Retracting a vote that was never cast
// is a silent success.
func (h *VoteHandler) Delete(kind vote.Kind) gin.HandlerFunc {
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

		if err := h.engine.DeleteVote(userID, targetID, kind); err != nil {
			c.JSON(apperr.StatusOf(err), apperr.Payload(err))
			return
		}

		count, err := h.engine.VoteCount(targetID, kind)
		if err != nil {
			c.JSON(apperr.StatusOf(err), apperr.Payload(err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Vote removed", "vote_count": count})
	}
}

// Voters handles GET /:id/voters?type=up&page=1&per_page=15.
// Unknown type values are ignored rather than rejected, matching the
// listing contract.
func (h *VoteHandler) Voters(kind vote.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		targetID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
			return
		}

		filter := vote.None
		switch c.Query("type") {
		case "up":
			filter = vote.Up
		case "down":
			filter = vote.Down
		}

		params := pagination.FromQuery(c.Query("page"), c.Query("per_page"))
		page, err := h.engine.Voters(targetID, kind, filter, params)
		if err != nil {
			c.JSON(apperr.StatusOf(err), apperr.Payload(err))
			return
		}

		if c.Query("with_relationship") != "1" {
			c.JSON(http.StatusOK, page)
			return
		}

		// Attach the viewer's follow relationship to each listed voter
		voterIDs := make([]int, 0, len(page.Data))
		for _, u := range page.Data {
			voterIDs = append(voterIDs, u.ID)
		}
		following, err := h.follows.IsFollowingInRelationship(voterIDs, follow.KindUser, viewerID(c))
		if err != nil {
			c.JSON(apperr.StatusOf(err), apperr.Payload(err))
			return
		}

		data := make([]gin.H, 0, len(page.Data))
		for _, u := range page.Data {
			data = append(data, gin.H{
				"id":       u.ID,
				"username": u.Username,
				"bio":      u.Bio,
				"avatar":   u.Avatar,
				"relationship": gin.H{
					"is_following": following[u.ID],
				},
			})
		}
		c.JSON(http.StatusOK, gin.H{"data": data, "pagination": page.Pagination})
	}
}
