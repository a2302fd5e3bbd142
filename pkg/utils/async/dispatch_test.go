package async_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/argus/pkg/utils/async"
)

func TestDispatch(t *testing.T) {
	t.Run("handler runs after caller context is cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)

		async.Dispatch(ctx, func(ctx context.Context) error {
			time.Sleep(10 * time.Millisecond)
			done <- ctx.Err()
			return nil
		})
		cancel()

		select {
		case err := <-done:
			gt.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("handler did not run")
		}
	})

	t.Run("panic and error do not escape", func(t *testing.T) {
		done := make(chan struct{}, 2)

		async.Dispatch(context.Background(), func(ctx context.Context) error {
			defer func() { done <- struct{}{} }()
			panic("boom")
		})
		async.Dispatch(context.Background(), func(ctx context.Context) error {
			defer func() { done <- struct{}{} }()
			return errors.New("failed")
		})

		for range 2 {
			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("handler did not finish")
			}
		}
	})
}
