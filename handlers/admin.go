// File: handlers/admin.go
package handlers

import (
	"net/http"

	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/config"
	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/cron"
	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/services/assistant"
	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/utils"

	"github.com/gin-gonic/gin"
)

// AdminHandler exposes session inspection and knowledge maintenance.
type AdminHandler struct {
	Store assistant.SessionStore
}

// NewAdminHandler wires the handler.
func NewAdminHandler(store assistant.SessionStore) *AdminHandler {
	return &AdminHandler{Store: store}
}

// ListSessionsHandler returns a summary of every live session.
func (h *AdminHandler) ListSessionsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"count":    h.Store.Count(),
		"sessions": h.Store.Summaries(),
	})
}

// ClearSessionHandler deletes one session by id.
func (h *AdminHandler) ClearSessionHandler(c *gin.Context) {
	id := c.Param("id")
	if !h.Store.Clear(id) {
		utils.JSONError(c, http.StatusNotFound, "Session not found", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": id})
}

// ClearAllSessionsHandler deletes every session.
func (h *AdminHandler) ClearAllSessionsHandler(c *gin.Context) {
	n := h.Store.ClearAll()
	c.JSON(http.StatusOK, gin.H{"cleared": n})
}

// TriggerScrapeHandler queues a background scrape of the configured sitemap.
// An explicit sitemap_url in the body overrides the configured one.
func (h *AdminHandler) TriggerScrapeHandler(c *gin.Context) {
	var req struct {
		SitemapURL string `json:"sitemap_url"`
	}
	// Body is optional.
	_ = c.ShouldBindJSON(&req)

	if req.SitemapURL == "" {
		req.SitemapURL = config.AppConfig.SitemapURL
	}
	if err := cron.EnqueueScrape(req.SitemapURL); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to queue scrape", err.Error())
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"queued": req.SitemapURL})
}
