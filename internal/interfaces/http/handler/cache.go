package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ams/backend/internal/application/validation"
	"github.com/ams/backend/internal/infrastructure/cache"
)

// CacheHandler exposes tag-based invalidation of the validation result cache.
type CacheHandler struct {
	BaseHandler
	cache  cache.TaggedCache
	logger *zap.Logger
}

// NewCacheHandler creates a new cache handler.
func NewCacheHandler(taggedCache cache.TaggedCache, logger *zap.Logger) *CacheHandler {
	return &CacheHandler{cache: taggedCache, logger: logger}
}

// RegisterRoutes registers cache routes
func (h *CacheHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.DELETE("/cache/tags/:tag", h.InvalidateTag)
}

// knownTags limits invalidation to the tags the validation layer writes.
var knownTags = map[string]struct{}{
	validation.TagAddressCheck:    {},
	validation.TagStreetSplitting: {},
}

// InvalidateTag evicts all cached validation results carrying the given tag.
func (h *CacheHandler) InvalidateTag(c *gin.Context) {
	tag := c.Param("tag")
	if _, ok := knownTags[tag]; !ok {
		h.BadRequest(c, "unknown cache tag")
		return
	}

	if err := h.cache.InvalidateTag(c.Request.Context(), tag); err != nil {
		h.logger.Error("cache tag invalidation failed",
			zap.String("tag", tag),
			zap.Error(err),
		)
		h.InternalError(c, "cache invalidation failed")
		return
	}

	h.logger.Info("cache tag invalidated", zap.String("tag", tag))
	h.NoContent(c)
}
