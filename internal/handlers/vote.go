package handlers

import (
	"net/http"

	"phreddit/internal/middleware"
	"phreddit/internal/services"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct {
	votes *services.VoteLedger
}

func NewVoteHandler(svc *services.Services) *VoteHandler {
	return &VoteHandler{votes: svc.Votes}
}

type voteInput struct {
	UserID   string `json:"userId"`
	VoteType string `json:"voteType" binding:"required"`
}

// VotePost POST /api/posts/:id/vote
func (h *VoteHandler) VotePost(c *gin.Context) {
	h.vote(c, services.TargetPost)
}

// VoteComment POST /api/comments/:id/vote
func (h *VoteHandler) VoteComment(c *gin.Context) {
	h.vote(c, services.TargetComment)
}

func (h *VoteHandler) vote(c *gin.Context, target string) {
	var in voteInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "voteType is required")
		return
	}
	// 已登录用户以自己的身份投票
	userID := middleware.CurrentUserID(c)
	if userID == "" {
		userID = in.UserID
	}
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Login required"})
		return
	}

	res, err := h.votes.Vote(c.Request.Context(), target, c.Param("id"), userID, in.VoteType)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
