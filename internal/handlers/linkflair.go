package handlers

import (
	"net/http"

	"phreddit/internal/services"

	"github.com/gin-gonic/gin"
)

type LinkFlairHandler struct {
	forum *services.Forum
}

func NewLinkFlairHandler(svc *services.Services) *LinkFlairHandler {
	return &LinkFlairHandler{forum: svc.Forum}
}

func (h *LinkFlairHandler) List(c *gin.Context) {
	flairs, err := h.forum.ListLinkFlairs(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, flairs)
}

type linkFlairInput struct {
	Content string `json:"content"`
}

func (h *LinkFlairHandler) Create(c *gin.Context) {
	var in linkFlairInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	flair, err := h.forum.CreateLinkFlair(c.Request.Context(), in.Content)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, flair)
}
