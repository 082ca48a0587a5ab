package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// ReconciliationWorker periodically removes identities that have no
// profile row. The transactional provisioning path should not produce
// them; this is the safety net for anything that slips through.
type ReconciliationWorker struct {
	identities repository.IdentityRepository
	logger     *zap.Logger
	cfg        config.WorkerConfig
}

// NewReconciliationWorker constructs the worker.
func NewReconciliationWorker(identities repository.IdentityRepository, logger *zap.Logger, cfg config.WorkerConfig) *ReconciliationWorker {
	return &ReconciliationWorker{identities: identities, logger: logger, cfg: cfg}
}

// Start runs the reconciliation loop until ctx is cancelled.
func (w *ReconciliationWorker) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(w.cfg.ReconcileInterval())
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.runOnce(ctx)
			}
		}
	}()
}

func (w *ReconciliationWorker) runOnce(ctx context.Context) {
	cutoff := time.Now().Add(-w.cfg.OrphanGrace())
	removed, err := w.identities.DeleteOrphans(ctx, cutoff)
	if err != nil {
		w.logger.Warn("orphan reconciliation failed", zap.Error(err))
		return
	}
	if removed > 0 {
		w.logger.Info("removed orphaned identities", zap.Int64("count", removed))
	}
}
