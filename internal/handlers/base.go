package handlers

import (
	"net/http"

	"phreddit/internal/middleware"
	"phreddit/internal/services"
	"phreddit/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Error helper: maps service errors to status codes with a {"message"} body.
func RespondError(c *gin.Context, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(code, gin.H{"message": "Internal server error"})
		return
	}
	c.JSON(code, gin.H{"message": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrBadCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrAlreadyVoted):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, services.ErrConflict), errors.Is(err, services.ErrInvalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"message": message})
}

func forbidden(c *gin.Context) {
	c.JSON(http.StatusForbidden, gin.H{"message": "Not allowed"})
}

// canModify reports whether the current user authored the content or is an admin.
func canModify(c *gin.Context, author string) bool {
	u := middleware.CurrentUser(c)
	return u != nil && (u.IsAdmin || u.DisplayName == author)
}

// cached serves a GET response from the cache, or computes and stores it.
func cached(c *gin.Context, cache *utils.Cache, load func() (interface{}, error)) {
	key := c.Request.URL.RequestURI() + "|" + middleware.ViewerID(c)
	if data, ok := cache.Get(key); ok {
		c.JSON(http.StatusOK, data)
		return
	}
	data, err := load()
	if err != nil {
		RespondError(c, err)
		return
	}
	cache.Set(key, data)
	c.JSON(http.StatusOK, data)
}

func logFor(c *gin.Context, log logrus.FieldLogger) logrus.FieldLogger {
	return log.WithFields(logrus.Fields{"path": c.FullPath(), "user_id": middleware.CurrentUserID(c)})
}
