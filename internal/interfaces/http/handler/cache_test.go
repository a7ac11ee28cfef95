package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/ams/backend/internal/application/validation"
	"github.com/ams/backend/internal/interfaces/http/router"
)

type fakeTaggedCache struct {
	invalidated []string
	fail        error
}

func (c *fakeTaggedCache) Get(_ context.Context, _ string) (string, bool, error) {
	return "", false, nil
}

func (c *fakeTaggedCache) Set(_ context.Context, _, _ string, _ time.Duration, _ ...string) error {
	return nil
}

func (c *fakeTaggedCache) InvalidateTag(_ context.Context, tag string) error {
	if c.fail != nil {
		return c.fail
	}
	c.invalidated = append(c.invalidated, tag)
	return nil
}

func (c *fakeTaggedCache) Close() error { return nil }

func newCacheEngine(c *fakeTaggedCache) *gin.Engine {
	engine := gin.New()
	r := router.NewRouter(engine)
	r.Register(NewCacheHandler(c, zap.NewNop()))
	r.Setup()
	return engine
}

func TestCacheHandler_InvalidateTag(t *testing.T) {
	c := &fakeTaggedCache{}
	engine := newCacheEngine(c)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/cache/tags/"+validation.TagAddressCheck, nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{validation.TagAddressCheck}, c.invalidated)
}

func TestCacheHandler_InvalidateTag_Unknown(t *testing.T) {
	c := &fakeTaggedCache{}
	engine := newCacheEngine(c)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/cache/tags/everything", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, c.invalidated)
}

func TestCacheHandler_InvalidateTag_BackendError(t *testing.T) {
	c := &fakeTaggedCache{fail: assert.AnError}
	engine := newCacheEngine(c)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/cache/tags/"+validation.TagStreetSplitting, nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
