package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lgavrilov/newspulse/app/tasks"
)

const (
	defaultItemLimit = 50
	maxItemLimit     = 200
)

func NewHandler(sources SourceStore, items ItemStore, ingestor tasks.Ingestor,
	sweeper tasks.StaleSweeper, version string) *Handler {
	return &Handler{
		sources:   sources,
		items:     items,
		ingestor:  ingestor,
		sweeper:   sweeper,
		startedAt: time.Now().UTC(),
		version:   version,
	}
}

// GetItems returns the highest-scored items, newest first among ties.
func (h *Handler) GetItems(c *gin.Context) {
	limit := defaultItemLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		limit = parsed
	}
	if limit > maxItemLimit {
		limit = maxItemLimit
	}

	items, err := h.items.TopByScore(c.Request.Context(), limit)
	if err != nil {
		slog.Error("Database error", "operation", "top_items", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": len(items),
	})
}

func (h *Handler) GetSources(c *gin.Context) {
	sources, err := h.sources.List(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "list_sources", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sources": sources,
		"total":   len(sources),
	})
}

// RunIngestion triggers a synchronous ingestion pass. An optional source_id
// query parameter limits the run to a single source.
func (h *Handler) RunIngestion(c *gin.Context) {
	sourceID := c.Query("source_id")

	stats, err := h.ingestor.Run(c.Request.Context(), sourceID)
	if err != nil {
		slog.Error("Ingestion run failed", "source_id", sourceID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Ingestion failed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   stats,
	})
}

// RunSweep triggers a synchronous retention sweep. An optional window_hours
// query parameter overrides the configured retention window.
func (h *Handler) RunSweep(c *gin.Context) {
	windowHours := 0
	if raw := c.Query("window_hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid window_hours parameter"})
			return
		}
		windowHours = parsed
	}

	result, err := h.sweeper.Sweep(c.Request.Context(), windowHours)
	if err != nil {
		slog.Error("Retention sweep failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Sweep failed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"removed": result,
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if sourceCount, err := h.sources.Count(c.Request.Context()); err == nil {
		health["sources"] = sourceCount
	}
	if itemCount, err := h.items.Count(c.Request.Context()); err == nil {
		health["items"] = itemCount
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()

	stats := map[string]interface{}{
		"version": h.version,
		"uptime":  time.Since(h.startedAt).String(),
	}

	if sourceCount, err := h.sources.Count(ctx); err == nil {
		stats["sources"] = sourceCount
	}
	if enabledCount, err := h.sources.CountEnabled(ctx); err == nil {
		stats["enabled_sources"] = enabledCount
	}
	if itemCount, err := h.items.Count(ctx); err == nil {
		stats["items"] = itemCount
	}

	c.JSON(http.StatusOK, stats)
}
