package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/filecache/internal/monitoring"
	"github.com/charlesng35/filecache/pkg/response"
)

// MonitoringHandler surfaces sweep state and cache size.
type MonitoringHandler struct {
	module *monitoring.Module
	cache  EntryReader
	folder string
}

// NewMonitoringHandler constructs a monitoring handler. Returns nil when monitoring is disabled.
func NewMonitoringHandler(module *monitoring.Module, reader EntryReader, folder string) *MonitoringHandler {
	if module == nil || reader == nil {
		return nil
	}
	return &MonitoringHandler{module: module, cache: reader, folder: folder}
}

// GET /api/summary
func (h *MonitoringHandler) Summary(c *gin.Context) {
	count, err := h.cache.Count(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"summary": h.module.Snapshot(),
		"cache": gin.H{
			"entries": count,
			"folder":  h.folder,
		},
	})
}
