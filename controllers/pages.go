package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/zasai/zas-translate/config"
	"github.com/zasai/zas-translate/middlewares"
)

// Page renders one of the embedded templates.
func (h *Handler) Page(template, title string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, template, pageData(c, title))
	}
}

// NotFound answers JSON under /api and the 404 page elsewhere.
func (h *Handler) NotFound(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.HTML(http.StatusNotFound, "404.html", pageData(c, "Not found"))
}

func pageData(c *gin.Context, title string) gin.H {
	return gin.H{
		"Title":   title,
		"Email":   c.GetString(middlewares.ContextEmail),
		"Version": config.Version,
	}
}
