package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"taskmanager/internal/authz"
	"taskmanager/internal/logging"
	"taskmanager/internal/models"
	"taskmanager/internal/services"
)

const TokenCookie = "token"

const (
	msgLoginAgain   = "Not authorized. Try login again."
	msgUserNotFound = "Not authorized. User not found."
	msgAdminOnly    = "Not authorized as admin. Try login as admin."
)

// UserLookup resolves the user behind a session token.
type UserLookup interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// tokenFromRequest reads the session cookie and falls back to a Bearer header.
func tokenFromRequest(c *gin.Context) string {
	if tok, err := c.Cookie(TokenCookie); err == nil && tok != "" {
		return tok
	}
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// Protect requires a valid session token that belongs to an existing user.
func Protect(auth services.AuthService, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		// пропускаем preflight
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		tokenStr := tokenFromRequest(c)
		if tokenStr == "" {
			abortJSON(c, http.StatusUnauthorized, msgLoginAgain)
			return
		}
		claims, err := auth.ParseToken(tokenStr)
		if err != nil {
			abortJSON(c, http.StatusUnauthorized, msgLoginAgain)
			return
		}
		uid, err := models.ParseID(claims.UserID)
		if err != nil {
			abortJSON(c, http.StatusUnauthorized, msgLoginAgain)
			return
		}

		user, err := users.GetByID(c.Request.Context(), uid)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				abortJSON(c, http.StatusUnauthorized, msgUserNotFound)
				return
			}
			logging.Logger.Errorf("[auth][protect][err] load user=%s: %v", uid.Hex(), err)
			abortJSON(c, http.StatusUnauthorized, msgLoginAgain)
			return
		}

		authz.SetPrincipal(c, authz.Principal{
			UserID:  user.ID,
			Email:   user.Email,
			IsAdmin: user.IsAdmin,
		})
		c.Next()
	}
}
