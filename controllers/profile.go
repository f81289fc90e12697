package controllers

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zasai/zas-translate/log"
	"github.com/zasai/zas-translate/middlewares"
	"github.com/zasai/zas-translate/models"
	"github.com/zasai/zas-translate/repository"
)

const maxUsernameLen = 50

type ProfileResponse struct {
	models.Profile
	Email string `json:"email"`
}

type UpdateProfileRequest struct {
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
}

// GetProfile godoc
// @Summary  Current user's profile
// @Tags     Profile
// @Security Bearer
// @Produce  json
// @Success  200  {object}  ProfileResponse
// @Failure  404  {object}  map[string]string
// @Router   /profile [get]
func (h *Handler) GetProfile(c *gin.Context) {
	p, err := h.Profiles.Get(c.Request.Context(), c.GetUint(middlewares.ContextUserID))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		log.L().Error("get profile failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}
	c.JSON(http.StatusOK, ProfileResponse{Profile: *p, Email: c.GetString(middlewares.ContextEmail)})
}

// UpdateProfile godoc
// @Summary  Update the current user's profile
// @Tags     Profile
// @Security Bearer
// @Accept   json
// @Produce  json
// @Param    request  body      UpdateProfileRequest  true  "new values"
// @Success  200      {object}  ProfileResponse
// @Failure  400      {object}  map[string]string
// @Router   /profile [put]
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if utf8.RuneCountInString(req.Username) > maxUsernameLen {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username must be at most 50 characters"})
		return
	}

	p, err := h.Profiles.Update(c.Request.Context(), c.GetUint(middlewares.ContextUserID), repository.ProfileUpdate{
		Username:  req.Username,
		FullName:  strings.TrimSpace(req.FullName),
		AvatarURL: strings.TrimSpace(req.AvatarURL),
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		log.L().Error("update profile failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		return
	}
	c.JSON(http.StatusOK, ProfileResponse{Profile: *p, Email: c.GetString(middlewares.ContextEmail)})
}
