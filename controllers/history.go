package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zasai/zas-translate/log"
	"github.com/zasai/zas-translate/middlewares"
	"github.com/zasai/zas-translate/models"
	"github.com/zasai/zas-translate/repository"
)

const maxPageSize = 100

type HistoryListResponse struct {
	Items    []models.TranslationHistory `json:"items"`
	Total    int64                       `json:"total"`
	Page     int                         `json:"page,omitempty"`
	PageSize int                         `json:"page_size,omitempty"`
}

// parsePage reads page/page_size. Without page_size every record is returned.
func parsePage(c *gin.Context) (repository.Page, error) {
	var p repository.Page
	if s := c.Query("page_size"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return p, errors.New("page_size must be a positive integer")
		}
		p.Size = min(n, maxPageSize)
		p.Number = 1
	}
	if s := c.Query("page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return p, errors.New("page must be a positive integer")
		}
		p.Number = n
		if p.Size == 0 {
			p.Size = 20
		}
	}
	return p, nil
}

// ListHistory godoc
// @Summary     Translation history
// @Description The caller's records, newest first. page/page_size are optional.
// @Tags        History
// @Security    Bearer
// @Produce     json
// @Param       page       query     int  false  "page number, from 1"
// @Param       page_size  query     int  false  "records per page, at most 100"
// @Success     200        {object}  HistoryListResponse
// @Failure     400        {object}  map[string]string
// @Router      /history [get]
func (h *Handler) ListHistory(c *gin.Context) {
	page, err := parsePage(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	items, total, err := h.History.List(c.Request.Context(), c.GetUint(middlewares.ContextUserID), page)
	if err != nil {
		log.L().Error("list history failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}
	c.JSON(http.StatusOK, HistoryListResponse{Items: items, Total: total, Page: page.Number, PageSize: page.Size})
}

// GetHistory godoc
// @Summary  One history record
// @Tags     History
// @Security Bearer
// @Produce  json
// @Param    id   path      string  true  "record id"
// @Success  200  {object}  models.TranslationHistory
// @Failure  404  {object}  map[string]string
// @Router   /history/{id} [get]
func (h *Handler) GetHistory(c *gin.Context) {
	rec, err := h.History.Get(c.Request.Context(), c.GetUint(middlewares.ContextUserID), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
			return
		}
		log.L().Error("get history failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load record"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// DeleteHistory godoc
// @Summary  Delete one history record
// @Tags     History
// @Security Bearer
// @Produce  json
// @Param    id   path      string  true  "record id"
// @Success  200  {object}  map[string]string
// @Failure  404  {object}  map[string]string
// @Router   /history/{id} [delete]
func (h *Handler) DeleteHistory(c *gin.Context) {
	id := c.Param("id")
	uid := c.GetUint(middlewares.ContextUserID)
	if err := h.History.Delete(c.Request.Context(), uid, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
			return
		}
		log.L().Error("delete history failed", zap.Error(err), zap.String("id", id))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete record"})
		return
	}
	invalidateCache(overviewCacheKey)
	log.L().Info("history record deleted", zap.Uint("user_id", uid), zap.String("id", id))
	c.JSON(http.StatusOK, gin.H{"message": "deleted", "id": id})
}

// ClearHistory godoc
// @Summary  Delete all of the caller's history
// @Tags     History
// @Security Bearer
// @Produce  json
// @Success  200  {object}  map[string]interface{}
// @Router   /history [delete]
func (h *Handler) ClearHistory(c *gin.Context) {
	n, err := h.History.Clear(c.Request.Context(), c.GetUint(middlewares.ContextUserID))
	if err != nil {
		log.L().Error("clear history failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear history"})
		return
	}
	invalidateCache(overviewCacheKey)
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}
