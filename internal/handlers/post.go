package handlers

import (
	"net/http"

	"phreddit/internal/middleware"
	"phreddit/internal/services"
	"phreddit/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type PostHandler struct {
	svc   *services.Services
	cache *utils.Cache
	log   logrus.FieldLogger
}

func NewPostHandler(svc *services.Services, cache *utils.Cache, log logrus.FieldLogger) *PostHandler {
	return &PostHandler{svc: svc, cache: cache, log: log}
}

// List 帖子列表 ?sort=newest|oldest|active
func (h *PostHandler) List(c *gin.Context) {
	cached(c, h.cache, func() (interface{}, error) {
		return h.svc.Ranker.ListPosts(c.Request.Context(), c.Query("sort"), middleware.ViewerID(c))
	})
}

// Search 搜索 ?q=&sort=
func (h *PostHandler) Search(c *gin.Context) {
	cached(c, h.cache, func() (interface{}, error) {
		return h.svc.Ranker.Search(c.Request.Context(), c.Query("q"), c.Query("sort"), middleware.ViewerID(c))
	})
}

func (h *PostHandler) Detail(c *gin.Context) {
	post, err := h.svc.Forum.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) Create(c *gin.Context) {
	var in services.PostInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	in.PostedBy = middleware.CurrentUser(c).DisplayName

	post, err := h.svc.Forum.CreatePost(c.Request.Context(), in)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (h *PostHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	post, err := h.svc.Forum.GetPost(ctx, c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	if !canModify(c, post.PostedBy) {
		forbidden(c)
		return
	}

	var in services.PostInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	post, err = h.svc.Forum.UpdatePost(ctx, post.ID, in)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// View 浏览量 +1
func (h *PostHandler) View(c *gin.Context) {
	post, err := h.svc.Forum.IncrementViews(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	post, err := h.svc.Forum.GetPost(ctx, c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	if !canModify(c, post.PostedBy) {
		forbidden(c)
		return
	}
	if err := h.svc.Content.DeletePostCascade(ctx, post.ID); err != nil {
		RespondError(c, err)
		return
	}
	logFor(c, h.log).WithField("post_id", post.ID).Info("post deleted")
	c.JSON(http.StatusOK, gin.H{"message": "Post and associated comments deleted successfully"})
}

// Comments 帖子下的全部评论（先序）
func (h *PostHandler) Comments(c *gin.Context) {
	comments, err := h.svc.Forum.PostComments(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}
