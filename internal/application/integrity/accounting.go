package integrity

import (
	"context"

	"go.uber.org/zap"
)

// AccountingClient reports accountable sessions to the remote service.
type AccountingClient interface {
	DoAccounting(ctx context.Context, sessionID string) error
	DoConversion(ctx context.Context) error
}

// AccountingReporter flushes the sessions accumulated during a request in one
// batch after the response has been produced.
type AccountingReporter struct {
	client   AccountingClient
	sessions AccountableSessionStore
	logger   *zap.Logger
}

// NewAccountingReporter creates a new reporter.
func NewAccountingReporter(client AccountingClient, sessions AccountableSessionStore, logger *zap.Logger) *AccountingReporter {
	return &AccountingReporter{
		client:   client,
		sessions: sessions,
		logger:   logger,
	}
}

// Flush drains the session store and reports every id. Failed reports are
// logged and skipped; the conversion marker is sent once when at least one
// session was reported.
func (r *AccountingReporter) Flush(ctx context.Context) {
	ids := r.sessions.Drain()
	if len(ids) == 0 {
		return
	}

	reported := 0
	for _, id := range ids {
		if err := r.client.DoAccounting(ctx, id); err != nil {
			r.logger.Error("session accounting failed",
				zap.String("session_id", id),
				zap.Error(err),
			)
			continue
		}
		reported++
	}

	if reported == 0 {
		return
	}
	if err := r.client.DoConversion(ctx); err != nil {
		r.logger.Error("accounting conversion failed", zap.Error(err))
	}
	r.logger.Debug("accounting batch flushed", zap.Int("sessions", reported))
}
