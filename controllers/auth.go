package controllers

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zasai/zas-translate/config"
	"github.com/zasai/zas-translate/log"
	"github.com/zasai/zas-translate/middlewares"
	"github.com/zasai/zas-translate/models"
	"github.com/zasai/zas-translate/repository"
	"github.com/zasai/zas-translate/utils"
)

type SignupRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	FullName string `json:"full_name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  models.Users `json:"user"`
}

func tokenTTL() time.Duration {
	hours := config.Get().Auth.TokenTTLHours
	if hours <= 0 {
		hours = 72
	}
	return time.Duration(hours) * time.Hour
}

func (h *Handler) issueToken(c *gin.Context, u *models.Users) (string, error) {
	cfg := config.Get()
	ttl := tokenTTL()
	token, err := utils.GenerateJWT(u.ID, u.Email, u.Role, cfg.Auth.JWTSecret, ttl)
	if err != nil {
		return "", err
	}
	utils.SetAuthCookie(c, token, ttl, cfg.Auth.SecureCookie)
	return token, nil
}

// Signup godoc
// @Summary     Create an account
// @Description Creates the user and its profile, returns a token and sets the auth cookie
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       request  body      SignupRequest      true  "credentials"
// @Success     201      {object}  AuthResponse
// @Failure     400      {object}  map[string]string
// @Failure     409      {object}  map[string]string  "email already registered"
// @Router      /auth/signup [post]
func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(req.Email))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email"})
		return
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		log.L().Error("hash password failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create account"})
		return
	}

	user := &models.Users{Email: addr.Address, Password: hashed, Role: models.RoleUser}
	username := strings.SplitN(addr.Address, "@", 2)[0]
	profile := &models.Profile{Username: truncateRunes(username, 50), FullName: strings.TrimSpace(req.FullName)}
	if err := h.Users.Create(c.Request.Context(), user, profile); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		log.L().Error("create user failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create account"})
		return
	}

	token, err := h.issueToken(c, user)
	if err != nil {
		log.L().Error("generate token failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create token"})
		return
	}
	log.L().Info("user signed up", zap.Uint("user_id", user.ID))
	c.JSON(http.StatusCreated, AuthResponse{Token: token, User: *user})
}

// Login godoc
// @Summary     Sign in
// @Description Checks the credentials, returns a token and sets the auth cookie. Limited to 5 attempts per minute per email.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       request  body      LoginRequest       true  "credentials"
// @Success     200      {object}  AuthResponse
// @Failure     401      {object}  map[string]string
// @Failure     429      {object}  map[string]string
// @Router      /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !config.LoginLimiter(email).Allow() {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many login attempts, try again later"})
		return
	}

	user, err := h.Users.FindByEmail(c.Request.Context(), email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		log.L().Error("find user failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	if user == nil || !utils.CheckPassword(user.Password, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	token, err := h.issueToken(c, user)
	if err != nil {
		log.L().Error("generate token failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create token"})
		return
	}
	c.JSON(http.StatusOK, AuthResponse{Token: token, User: *user})
}

// Logout godoc
// @Summary  Sign out
// @Tags     Auth
// @Produce  json
// @Success  200  {object}  map[string]string
// @Router   /auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	utils.ClearAuthCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me godoc
// @Summary  Current user
// @Tags     Auth
// @Security Bearer
// @Produce  json
// @Success  200  {object}  map[string]interface{}
// @Failure  401  {object}  map[string]string
// @Router   /auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"id":    c.GetUint(middlewares.ContextUserID),
		"email": c.GetString(middlewares.ContextEmail),
		"role":  c.GetString(middlewares.ContextRole),
	})
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
