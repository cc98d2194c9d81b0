package handlers

import (
	"net/http"

	"phreddit/internal/services"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	forum *services.Forum
}

func NewUserHandler(svc *services.Services) *UserHandler {
	return &UserHandler{forum: svc.Forum}
}

// Content 用户发布的内容 ?type=posts|comments|communities
func (h *UserHandler) Content(c *gin.Context) {
	content, err := h.forum.UserContent(c.Request.Context(), c.Param("id"), c.DefaultQuery("type", services.ContentPosts))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, content)
}

func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.forum.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
