package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ams/backend/internal/infrastructure/logger"
)

// SalesChannelHeader carries the sales channel the request operates on.
const SalesChannelHeader = "X-Sales-Channel-Id"

// RequestID adds a unique request ID to each request. The id is stored on
// both the gin context and the request context so database and remote-call
// logs can be correlated with the request log line.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = generateRequestID()
		}
		c.Set("request_id", requestID)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), requestID))
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Next()
	}
}

// SalesChannel copies the sales channel header into the gin context and the
// request context so handlers can resolve per-channel settings.
func SalesChannel() gin.HandlerFunc {
	return func(c *gin.Context) {
		if channelID := c.GetHeader(SalesChannelHeader); channelID != "" {
			c.Set("sales_channel_id", channelID)
			c.Request = c.Request.WithContext(logger.WithSalesChannelID(c.Request.Context(), channelID))
		}
		c.Next()
	}
}

// GetSalesChannelID returns the sales channel id set by SalesChannel, or ""
func GetSalesChannelID(c *gin.Context) string {
	return c.GetString("sales_channel_id")
}

// generateRequestID generates a unique request ID
func generateRequestID() string {
	// Generate 16 random bytes (128 bits)
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp-based ID if crypto/rand fails
		return time.Now().Format("20060102150405")
	}
	return hex.EncodeToString(bytes)
}
