package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxUILogEntries caps one batch from the launcher UI
const maxUILogEntries = 500

// UILogEntry represents a log entry from the UI
type UILogEntry struct {
	ID        string                 `json:"id"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Context   map[string]interface{} `json:"context"`
	Timestamp string                 `json:"timestamp"`
}

// UILogStreamRequest represents a batch of logs from the UI
type UILogStreamRequest struct {
	Source  string       `json:"source"`
	Entries []UILogEntry `json:"entries"`
}

// StreamLogs writes log batches from the launcher UI into the server log
func (h *Handlers) StreamLogs(c *gin.Context) {
	var req UILogStreamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid log request format")
		return
	}
	if req.Source != "ui" {
		badRequest(c, "Invalid log source")
		return
	}
	if len(req.Entries) == 0 {
		badRequest(c, "No log entries provided")
		return
	}
	if len(req.Entries) > maxUILogEntries {
		badRequest(c, "Too many log entries")
		return
	}

	logger := h.logger.Named("ui")
	for _, entry := range req.Entries {
		fields := make([]zap.Field, 0, len(entry.Context)+2)
		fields = append(fields,
			zap.String("ui_log_id", entry.ID),
			zap.String("ui_timestamp", entry.Timestamp),
		)
		for key, value := range entry.Context {
			switch v := value.(type) {
			case string:
				fields = append(fields, zap.String(key, v))
			case float64:
				fields = append(fields, zap.Float64(key, v))
			case bool:
				fields = append(fields, zap.Bool(key, v))
			default:
				fields = append(fields, zap.Any(key, v))
			}
		}

		switch entry.Level {
		case "error":
			logger.Error(entry.Message, fields...)
		case "warn":
			logger.Warn(entry.Message, fields...)
		case "debug", "verbose":
			logger.Debug(entry.Message, fields...)
		default:
			logger.Info(entry.Message, fields...)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"entries_received": len(req.Entries),
		"timestamp":        time.Now().Unix(),
	})
}
