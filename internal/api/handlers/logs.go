package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"relist/internal/activitylog"
	"relist/internal/logger"
)

// LogsHandler serves the dashboard's activity log page.
type LogsHandler struct {
	activity *activitylog.Logger
	logger   *logger.Logger
}

func NewLogsHandler(activity *activitylog.Logger, logger *logger.Logger) *LogsHandler {
	return &LogsHandler{activity: activity, logger: logger}
}

func (h *LogsHandler) List(c *gin.Context) {
	merchantID := merchantFrom(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "200"))

	entries, err := h.activity.Recent(merchantID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to fetch logs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "logs": entries})
}

func (h *LogsHandler) Clear(c *gin.Context) {
	merchantID := merchantFrom(c)

	if err := h.activity.Clear(merchantID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to clear logs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
