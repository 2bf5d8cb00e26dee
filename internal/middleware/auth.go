package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/oggyb/blinder/internal/db"
	svcErr "github.com/oggyb/blinder/internal/errors"
	"github.com/oggyb/blinder/internal/repository"
)

const userKey = "blinder.user"

// UserLookup resolves the subject of a verified token.
type UserLookup interface {
	FindByEmail(ctx context.Context, email string) (*db.User, error)
}

type AuthMiddleware struct {
	log    *slog.Logger
	secret []byte
	users  UserLookup
}

func NewAuthMiddleware(log *slog.Logger, secret string, users UserLookup) *AuthMiddleware {
	return &AuthMiddleware{
		log:    log.With("middleware", "auth"),
		secret: []byte(secret),
		users:  users,
	}
}

// RequireAuth verifies an HS256 bearer token and loads the user named by its
// sub claim. allowQuery also accepts ?token= for clients that cannot set headers.
func (am *AuthMiddleware) RequireAuth(allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := extractToken(c, allowQuery)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			return
		}

		email, err := am.subject(raw)
		if err != nil {
			am.log.Debug("token rejected", "err", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			return
		}

		user, err := am.users.FindByEmail(c.Request.Context(), email)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "user not found"})
				return
			}
			am.log.Error("FindByEmail failed", "err", err)
			mapped := svcErr.Map(err)
			c.AbortWithStatusJSON(svcErr.HTTPStatus(mapped), gin.H{"error": svcErr.Message(mapped)})
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

func (am *AuthMiddleware) subject(raw string) (string, error) {
	token, err := jwt.Parse(raw, func(*jwt.Token) (any, error) {
		return am.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	sub, err := token.Claims.GetSubject()
	if err != nil {
		return "", err
	}
	// emails are stored lower-cased
	sub = strings.ToLower(strings.TrimSpace(sub))
	if sub == "" {
		return "", errors.New("empty subject")
	}
	return sub, nil
}

// CurrentUser returns the user loaded by RequireAuth.
func CurrentUser(c *gin.Context) *db.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	u, _ := v.(*db.User)
	return u
}

func extractToken(c *gin.Context, allowQuery bool) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	if allowQuery {
		return c.Query("token")
	}
	return ""
}
