package middlewares

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zasai/zas-translate/config"
	"github.com/zasai/zas-translate/models"
	"github.com/zasai/zas-translate/repository"
	"github.com/zasai/zas-translate/utils"
)

// keys set on the gin context by the auth middlewares
const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
	ContextRole   = "role"
)

var errNoToken = errors.New("missing token")

func authenticate(c *gin.Context, users repository.UserRepository) (*models.Users, error) {
	token := utils.TokenFromRequest(c)
	if token == "" {
		return nil, errNoToken
	}
	claims, err := utils.ParseJWT(token, config.Get().Auth.JWTSecret)
	if err != nil {
		return nil, err
	}
	u, err := users.FindByID(c.Request.Context(), claims.UserID)
	if err != nil {
		return nil, err
	}
	c.Set(ContextUserID, u.ID)
	c.Set(ContextEmail, u.Email)
	c.Set(ContextRole, u.Role)
	return u, nil
}

// AuthMiddleWare rejects API requests without a valid token with 401.
func AuthMiddleWare(users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := authenticate(c, users); err != nil {
			msg := "Unauthorized"
			if errors.Is(err, repository.ErrNotFound) {
				msg = "user not found"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}
		c.Next()
	}
}

// PageAuth redirects page requests without a valid token to the sign-in page.
func PageAuth(users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := authenticate(c, users); err != nil {
			c.Redirect(http.StatusFound, "/auth")
			c.Abort()
			return
		}
		c.Next()
	}
}

// OptionalAuth identifies the caller when possible and never rejects.
func OptionalAuth(users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, _ = authenticate(c, users)
		c.Next()
	}
}
