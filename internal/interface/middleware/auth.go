package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-portfolio-tracker/internal/domain/apperror"
)

const CtxUserIDKey = "userID"

// TokenVerifier resolves a bearer token to a user id. Implemented by application.AuthService.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Auth requires an "Authorization: Bearer <token>" header and puts the user id
// into the Gin context under CtxUserIDKey. Failures are reported through c.Error
// and rendered by Errors.
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			_ = c.Error(apperror.New(apperror.KindUnauthorized, "missing bearer token"))
			c.Abort()
			return
		}
		userID, err := verifier.Verify(token)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Set(CtxUserIDKey, userID)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// UserID returns the authenticated user id set by Auth.
func UserID(c *gin.Context) string {
	return c.GetString(CtxUserIDKey)
}
