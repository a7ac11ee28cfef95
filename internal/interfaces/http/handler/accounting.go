package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ams/backend/internal/application/integrity"
)

// AccountingHandler exposes an explicit flush of the accountable session
// store, for hosts that batch their accounting outside the request cycle.
type AccountingHandler struct {
	BaseHandler
	reporter *integrity.AccountingReporter
}

// NewAccountingHandler creates a new accounting handler.
func NewAccountingHandler(reporter *integrity.AccountingReporter) *AccountingHandler {
	return &AccountingHandler{reporter: reporter}
}

// RegisterRoutes registers accounting routes
func (h *AccountingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/accounting/flush", h.Flush)
}

// Flush drains the session store and reports every accumulated session.
func (h *AccountingHandler) Flush(c *gin.Context) {
	h.reporter.Flush(c.Request.Context())
	h.NoContent(c)
}
