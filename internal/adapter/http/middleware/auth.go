package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"todoapi/internal/core/ports"
	"todoapi/pkg/apierrors"
)

const contextKeyUserID = "user_id"

// UserIDFromContext returns the user id set by RequireBearer, 0 if not set.
func UserIDFromContext(c *gin.Context) int64 {
	v, ok := c.Get(contextKeyUserID)
	if !ok {
		return 0
	}
	id, ok := v.(int64)
	if !ok {
		return 0
	}
	return id
}

// RequireBearer verifies the Authorization bearer token and stores its user id
// in the context. Missing or invalid tokens are answered with 401.
func RequireBearer(tokens ports.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, token, found := strings.Cut(c.GetHeader("Authorization"), " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			abortUnauthorized(c)
			return
		}

		userID, err := tokens.Verify(strings.TrimSpace(token))
		if err != nil {
			abortUnauthorized(c)
			return
		}

		c.Set(contextKeyUserID, userID)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(
		http.StatusUnauthorized,
		apierrors.CreateError(http.StatusUnauthorized, apierrors.MsgAuthRequired, GetLang(c)),
	)
}
