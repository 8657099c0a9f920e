package http

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/edushare/auth/core"
	"github.com/edushare/auth/service"
)

// userIDKey is the gin context key the bearer middleware stores the
// authenticated user ID under.
const userIDKey = "userID"

// BearerAuth validates the Authorization bearer token through the session
// service and puts the user ID into the request context. Requests without
// a live session are rejected with 401.
func BearerAuth(sessions *service.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			abortWithError(c, core.NewError(core.KindInvalidCredentials))
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")

		userID, ok, err := sessions.ValidateAccess(c.Request.Context(), token)
		if err != nil {
			abortWithError(c, err)
			return
		}
		if !ok {
			abortWithError(c, core.NewError(core.KindInvalidCredentials))
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}
