package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/salon-connect/pkg/helpers"
	"github.com/oksasatya/salon-connect/pkg/response"
)

const CtxUserIDKey = "userID"

// TokenVerifier validates an access token and returns its claims.
type TokenVerifier interface {
	ParseAccessToken(token string) (*helpers.Claims, error)
}

// bearerOrCookie prefers the Authorization header and falls back to the access cookie.
func bearerOrCookie(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if scheme, token, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	token, _ := c.Cookie(helpers.AccessCookie)
	return token
}

// Auth validates the access token and, when rdb is set, requires the Redis
// session user:session:<id> to exist and carry the token's session id.
// It sets userID (and userName/userEmail from the session) in the Gin context.
func Auth(rdb *redis.Client, verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerOrCookie(c)
		if token == "" {
			response.Error[any](c, http.StatusUnauthorized, "missing access token", nil)
			c.Abort()
			return
		}
		claims, err := verifier.ParseAccessToken(token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid access token", nil)
			c.Abort()
			return
		}

		if rdb != nil {
			data, err := rdb.HGetAll(c.Request.Context(), "user:session:"+claims.UserID).Result()
			if err != nil || len(data) == 0 {
				response.Error[any](c, http.StatusUnauthorized, "session not found", nil)
				c.Abort()
				return
			}
			if sid := data["sid"]; sid != "" && sid != claims.SessionID {
				response.Error[any](c, http.StatusUnauthorized, "session expired", nil)
				c.Abort()
				return
			}
			c.Set("userName", data["name"])
			c.Set("userEmail", data["email"])
		}

		c.Set(CtxUserIDKey, claims.UserID)
		c.Next()
	}
}
