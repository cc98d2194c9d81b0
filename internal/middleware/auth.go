package middleware

import (
	"net/http"

	"phreddit/internal/db"
	"phreddit/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const CheckUserKey = "user"

// SessionUserKey is the session field holding the logged in user's id.
const SessionUserKey = "user_id"

// UserIDHeader lets API clients name the viewer of read-only listings.
// It never authenticates a request.
const UserIDHeader = "User-Id"

// ViewerKey holds the id used to personalise listings.
const ViewerKey = "viewer_id"

// AuthRequired rejects requests without a current user.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Login required"})
			return
		}
		c.Next()
	}
}

// AdminRequired rejects requests whose current user is not an administrator.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Login required"})
			return
		}
		if !user.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Admin access required"})
			return
		}
		c.Next()
	}
}

// LoadUser retrieves the logged in user from the session and sets it on the
// context. The User-Id header is recorded as the viewer only.
func LoadUser(store *db.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if userID, _ := session.Get(SessionUserKey).(string); userID != "" {
			var user models.User
			if err := store.FindByID(c.Request.Context(), &user, userID); err == nil {
				c.Set(CheckUserKey, &user)
			}
		}
		if viewer := c.GetHeader(UserIDHeader); viewer != "" {
			c.Set(ViewerKey, viewer)
		}
		c.Next()
	}
}

// CurrentUser returns the user LoadUser found, or nil.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(CheckUserKey); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

// CurrentUserID returns the current user's id, or "".
func CurrentUserID(c *gin.Context) string {
	if u := CurrentUser(c); u != nil {
		return u.ID
	}
	return ""
}

// ViewerID returns the id listings are personalised for: the logged in user,
// else the User-Id header, else "".
func ViewerID(c *gin.Context) string {
	if id := CurrentUserID(c); id != "" {
		return id
	}
	return c.GetString(ViewerKey)
}
