package worker

import (
	"context"
	"time"

	"github.com/secmon-lab/argus/pkg/utils/logging"
)

// ExposureChecker simulates the registers and alerts on high exposure. It
// returns the number of alerts sent.
type ExposureChecker interface {
	CheckExposure(ctx context.Context) (int, error)
}

// ExposureWatchWorker runs the exposure check periodically.
//
// It assumes a single server instance; several instances each post their own
// alerts.
type ExposureWatchWorker struct {
	checker  ExposureChecker
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewExposureWatchWorker creates a worker that checks every interval
func NewExposureWatchWorker(checker ExposureChecker, interval time.Duration) *ExposureWatchWorker {
	return &ExposureWatchWorker{
		checker:  checker,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs the first check and the periodic loop in the background
func (w *ExposureWatchWorker) Start(ctx context.Context) error {
	logging.From(ctx).Info("exposure watch worker starting", "interval", w.interval.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker and waits for the current check to finish
func (w *ExposureWatchWorker) Stop() {
	logging.Default().Info("exposure watch worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("exposure watch worker stopped")
}

// Done is closed when the loop has exited
func (w *ExposureWatchWorker) Done() <-chan struct{} {
	return w.doneCh
}

func (w *ExposureWatchWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	w.check(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.check(ctx)

		case <-w.stopCh:
			return

		case <-ctx.Done():
			logging.From(ctx).Info("exposure watch worker context cancelled")
			return
		}
	}
}

// check logs failures and keeps the loop alive
func (w *ExposureWatchWorker) check(ctx context.Context) {
	started := time.Now()
	alerts, err := w.checker.CheckExposure(ctx)
	if err != nil {
		logging.From(ctx).Error("exposure check failed (will retry next interval)", "error", err.Error())
		return
	}
	logging.From(ctx).Info("exposure check completed",
		"alerts", alerts,
		"duration", time.Since(started).String(),
	)
}
