package worker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/argus/pkg/service/worker"
)

type countingChecker struct {
	calls atomic.Int32
	err   error
}

func (c *countingChecker) CheckExposure(ctx context.Context) (int, error) {
	c.calls.Add(1)
	return 0, c.err
}

func waitForCalls(t *testing.T, c *countingChecker, n int32) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for c.calls.Load() < n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d checks, got %d", n, c.calls.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestExposureWatchWorker_RunsPeriodically(t *testing.T) {
	checker := &countingChecker{}
	w := worker.NewExposureWatchWorker(checker, 10*time.Millisecond)
	gt.NoError(t, w.Start(context.Background())).Required()

	waitForCalls(t, checker, 3)
	w.Stop()

	calls := checker.calls.Load()
	time.Sleep(30 * time.Millisecond)
	gt.Value(t, checker.calls.Load()).Equal(calls)
}

func TestExposureWatchWorker_ContinuesAfterError(t *testing.T) {
	checker := &countingChecker{err: errors.New("firestore unavailable")}
	w := worker.NewExposureWatchWorker(checker, 10*time.Millisecond)
	gt.NoError(t, w.Start(context.Background())).Required()

	waitForCalls(t, checker, 2)
	w.Stop()
}

func TestExposureWatchWorker_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	checker := &countingChecker{}
	w := worker.NewExposureWatchWorker(checker, time.Hour)
	gt.NoError(t, w.Start(ctx)).Required()

	waitForCalls(t, checker, 1)
	cancel()

	select {
	case <-w.Done():
	case <-time.After(3 * time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}
