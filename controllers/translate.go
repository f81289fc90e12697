package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zasai/zas-translate/config"
	"github.com/zasai/zas-translate/global"
	"github.com/zasai/zas-translate/languages"
	"github.com/zasai/zas-translate/log"
	"github.com/zasai/zas-translate/middlewares"
	"github.com/zasai/zas-translate/models"
	"github.com/zasai/zas-translate/translator"
)

const maxSourceBytes = 2 << 20

type TranslateRequest struct {
	SourceCode  string   `json:"sourceCode" binding:"required"`
	SourceLang  string   `json:"sourceLang"`
	TargetLangs []string `json:"targetLangs" binding:"required"`
}

type TranslateResponse struct {
	SourceLang string              `json:"sourceLang"`
	Results    []translator.Result `json:"results"`
	HistoryID  string              `json:"historyId,omitempty"`
}

// Translate godoc
// @Summary     Translate a page
// @Description Translates the visible text of an HTML page or fragment into every target language. Signed-in callers get a history record.
// @Tags        Translation
// @Accept      json
// @Produce     json
// @Param       request  body      TranslateRequest   true  "page and languages"
// @Success     200      {object}  TranslateResponse
// @Failure     400      {object}  map[string]string  "invalid input or unknown language"
// @Failure     429      {object}  map[string]string  "server busy"
// @Failure     502      {object}  map[string]string  "every provider failed"
// @Router      /translate [post]
func (h *Handler) Translate(c *gin.Context) {
	select {
	case h.translateSlots <- struct{}{}:
		defer func() { <-h.translateSlots }()
	case <-c.Request.Context().Done():
		c.JSON(http.StatusRequestTimeout, gin.H{"error": "client canceled"})
		return
	case <-time.After(300 * time.Millisecond):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "the server is busy, try later"})
		return
	}

	var req TranslateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.SourceCode) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sourceCode is empty"})
		return
	}
	if len(req.SourceCode) > maxSourceBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "sourceCode is too large"})
		return
	}

	source := strings.TrimSpace(req.SourceLang)
	if source == "" || strings.EqualFold(source, "auto") {
		source = "auto"
	} else {
		l, ok := languages.Lookup(source)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported source language " + source})
			return
		}
		source = l.Code
	}
	targets, err := languages.ValidateTargets(req.TargetLangs)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results, err := h.Engine.TranslateAll(c.Request.Context(), req.SourceCode, source, targets)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			c.JSON(http.StatusRequestTimeout, gin.H{"error": "client canceled"})
			return
		}
		log.L().Error("translation failed", zap.Error(err), zap.Strings("targets", targets))
		status := http.StatusBadGateway
		if errors.Is(err, translator.ErrNoProviders) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	resp := TranslateResponse{SourceLang: source, Results: results}
	if uid := c.GetUint(middlewares.ContextUserID); uid != 0 {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		rec := &models.TranslationHistory{
			UserID:      uid,
			SourceLang:  source,
			TargetLangs: targets,
			SourceCode:  req.SourceCode,
		}
		if err := h.History.Create(ctx, rec, config.Get().Translation.HistoryLimit); err != nil {
			log.L().Error("save translation history failed", zap.Error(err), zap.Uint("user_id", uid))
		} else {
			resp.HistoryID = rec.ID
			invalidateCache(overviewCacheKey)
			log.L().Info("translation history stored",
				zap.Uint("user_id", uid),
				zap.String("source_lang", source),
				zap.Strings("target_langs", targets))
		}
	}
	c.JSON(http.StatusOK, resp)
}

// Languages godoc
// @Summary  Supported languages
// @Tags     Translation
// @Produce  json
// @Success  200  {array}  languages.Language
// @Router   /languages [get]
func (h *Handler) Languages(c *gin.Context) {
	c.JSON(http.StatusOK, languages.All())
}

// Health godoc
// @Summary  Liveness and uptime
// @Tags     System
// @Produce  json
// @Success  200  {object}  map[string]interface{}
// @Router   /health [get]
func (h *Handler) Health(c *gin.Context) {
	body := gin.H{
		"status":  "ok",
		"version": config.Version,
		"redis":   global.RedisDB != nil,
	}
	if h.Monitor != nil {
		body["uptime"] = h.Monitor.Uptime().Truncate(time.Second).String()
	}
	c.JSON(http.StatusOK, body)
}
