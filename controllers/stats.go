package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zasai/zas-translate/log"
	"github.com/zasai/zas-translate/middlewares"
	"github.com/zasai/zas-translate/models"
	"github.com/zasai/zas-translate/repository"
	"github.com/zasai/zas-translate/stats"
)

const (
	overviewCacheKey = "zas:admin:overview"
	overviewCacheTTL = time.Minute
)

// GetStats godoc
// @Summary     Translation statistics
// @Description Totals and the top 10 target languages of the caller's history
// @Tags        Stats
// @Security    Bearer
// @Produce     json
// @Success     200  {object}  stats.Summary
// @Router      /stats [get]
func (h *Handler) GetStats(c *gin.Context) {
	records, _, err := h.History.List(c.Request.Context(), c.GetUint(middlewares.ContextUserID), repository.Page{})
	if err != nil {
		log.L().Error("load history for stats failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute statistics"})
		return
	}
	c.JSON(http.StatusOK, stats.Compute(records))
}

type Overview struct {
	Users int64         `json:"users"`
	Stats stats.Summary `json:"stats"`
}

// AdminOverview godoc
// @Summary     Service overview
// @Description User count and statistics over every user's history (admin only)
// @Tags        Admin
// @Security    Bearer
// @Produce     json
// @Success     200  {object}  Overview
// @Failure     403  {object}  map[string]string
// @Router      /admin/overview [get]
func (h *Handler) AdminOverview(c *gin.Context) {
	ctx := c.Request.Context()
	if cached, err := getCache[Overview](overviewCacheKey); err == nil {
		c.JSON(http.StatusOK, cached)
		return
	}

	var (
		users   int64
		records []models.TranslationHistory
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := h.Users.Count(gctx)
		if err != nil {
			return fmt.Errorf("count users: %w", err)
		}
		users = n
		return nil
	})
	g.Go(func() error {
		all, err := h.History.All(gctx)
		if err != nil {
			return fmt.Errorf("load history: %w", err)
		}
		records = all
		return nil
	})
	if err := g.Wait(); err != nil {
		log.L().Error("admin overview failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build overview"})
		return
	}

	out := Overview{Users: users, Stats: stats.Compute(records)}
	if err := setCache(overviewCacheKey, out, overviewCacheTTL); err != nil {
		log.L().Debug("overview not cached", zap.Error(err))
	}
	c.JSON(http.StatusOK, out)
}
