package config_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/argus/pkg/cli/config"
)

func TestSlack_Configure(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		s := config.NewSlackForTest("", "")
		gt.Bool(t, s.IsConfigured()).False()

		svc, err := s.Configure()
		gt.NoError(t, err).Required()
		gt.Value(t, svc).Nil()
	})

	t.Run("configured", func(t *testing.T) {
		s := config.NewSlackForTest("xoxb-test", "http://127.0.0.1:1/api/")
		gt.Bool(t, s.IsConfigured()).True()

		svc, err := s.Configure()
		gt.NoError(t, err).Required()
		gt.Value(t, svc).NotNil()
	})
}

func TestRepository_Configure(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		repo, err := config.NewRepositoryForTest("memory", "").Configure(ctx)
		gt.NoError(t, err).Required()
		gt.NoError(t, repo.Close())
	})

	t.Run("firestore without project", func(t *testing.T) {
		_, err := config.NewRepositoryForTest("firestore", "").Configure(ctx)
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := config.NewRepositoryForTest("postgres", "").Configure(ctx)
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})
}
