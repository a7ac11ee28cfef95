package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// correlate simulates the request id and sales channel middleware, which run
// before GinMiddleware in the server's chain.
func correlate(requestID, channelID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := WithRequestID(c.Request.Context(), requestID)
		if channelID != "" {
			ctx = WithSalesChannelID(ctx, channelID)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func TestGinMiddleware(t *testing.T) {
	t.Run("logs the request with correlation fields", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		router := gin.New()
		router.Use(correlate("req-1", "channel-1"), GinMiddleware(zap.New(core)))
		router.GET("/test", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "ok"})
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/test?q=1", nil))

		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, 1, recorded.Len())

		entry := recorded.All()[0]
		assert.Equal(t, zapcore.InfoLevel, entry.Level)
		assert.Equal(t, "http request", entry.Message)

		fields := entry.ContextMap()
		assert.Equal(t, "req-1", fields["request_id"])
		assert.Equal(t, "channel-1", fields["sales_channel_id"])
		assert.Equal(t, "GET", fields["method"])
		assert.Equal(t, "/test", fields["path"])
		assert.Equal(t, "q=1", fields["query"])
		assert.EqualValues(t, http.StatusOK, fields["status"])
	})

	t.Run("client errors log at warn and server errors at error", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		router := gin.New()
		router.Use(correlate("req-1", ""), GinMiddleware(zap.New(core)))
		router.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
		router.GET("/broken", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/missing", nil))
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/broken", nil))

		require.Equal(t, 2, recorded.Len())
		assert.Equal(t, zapcore.WarnLevel, recorded.All()[0].Level)
		assert.Equal(t, zapcore.ErrorLevel, recorded.All()[1].Level)
	})

	t.Run("attaches the request-scoped logger to the request context", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		router := gin.New()
		router.Use(correlate("req-42", ""), GinMiddleware(zap.New(core)))
		router.GET("/test", func(c *gin.Context) {
			FromContext(c.Request.Context()).Info("from handler")
			c.Status(http.StatusOK)
		})

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/test", nil))

		entries := recorded.FilterMessage("from handler").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "req-42", entries[0].ContextMap()["request_id"])
	})
}

func TestRecovery(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	router := gin.New()
	router.Use(correlate("req-1", ""), Recovery(zap.New(core)))
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	entries := recorded.FilterMessage("panic recovered").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "boom", fields["error"])
}
