package handlers

import (
	"net/http"

	"phreddit/internal/middleware"
	"phreddit/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AdminHandler struct {
	svc *services.Services
	log logrus.FieldLogger
}

func NewAdminHandler(svc *services.Services, log logrus.FieldLogger) *AdminHandler {
	return &AdminHandler{svc: svc, log: log}
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.svc.Forum.ListUsers(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *AdminHandler) UpdateUser(c *gin.Context) {
	var in services.UserUpdate
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	user, err := h.svc.Forum.AdminUpdateUser(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser 删除用户及其全部内容
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if id == middleware.CurrentUserID(c) {
		badRequest(c, "Admins cannot delete their own account")
		return
	}
	if err := h.svc.Content.DeleteUserCascade(c.Request.Context(), id); err != nil {
		RespondError(c, err)
		return
	}
	logFor(c, h.log).WithField("deleted_user_id", id).Info("user deleted")
	c.JSON(http.StatusOK, gin.H{"message": "User and all associated content deleted successfully"})
}

// Dedupe runs the duplicate cleanup on demand.
func (h *AdminHandler) Dedupe(c *gin.Context) {
	report, err := h.svc.Maintenance.RemoveDuplicates(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
