package handlers

import (
	"net/http"

	"phreddit/internal/middleware"
	"phreddit/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type CommentHandler struct {
	svc *services.Services
	log logrus.FieldLogger
}

func NewCommentHandler(svc *services.Services, log logrus.FieldLogger) *CommentHandler {
	return &CommentHandler{svc: svc, log: log}
}

func (h *CommentHandler) List(c *gin.Context) {
	comments, err := h.svc.Forum.ListComments(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *CommentHandler) Get(c *gin.Context) {
	comment, err := h.svc.Forum.GetComment(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *CommentHandler) Create(c *gin.Context) {
	var in services.CommentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	in.CommentedBy = middleware.CurrentUser(c).DisplayName

	comment, err := h.svc.Forum.CreateComment(c.Request.Context(), in)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

type commentUpdate struct {
	Content string `json:"content"`
}

func (h *CommentHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	comment, err := h.svc.Forum.GetComment(ctx, c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	if !canModify(c, comment.CommentedBy) {
		forbidden(c)
		return
	}

	var in commentUpdate
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	comment, err = h.svc.Forum.UpdateComment(ctx, comment.ID, in.Content)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *CommentHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	comment, err := h.svc.Forum.GetComment(ctx, c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	if !canModify(c, comment.CommentedBy) {
		forbidden(c)
		return
	}
	if err := h.svc.Content.DeleteCommentCascade(ctx, comment.ID); err != nil {
		RespondError(c, err)
		return
	}
	logFor(c, h.log).WithField("comment_id", comment.ID).Info("comment deleted")
	c.JSON(http.StatusOK, gin.H{"message": "Comment and replies deleted successfully"})
}
