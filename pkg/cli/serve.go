package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/cli/config"
	httpctrl "github.com/secmon-lab/argus/pkg/controller/http"
	"github.com/secmon-lab/argus/pkg/service/worker"
	"github.com/secmon-lab/argus/pkg/usecase"
	"github.com/secmon-lab/argus/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var watchInterval time.Duration
	var rollupConcurrency int
	var appCfg config.App
	var repoCfg config.Repository
	var slackCfg config.Slack

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("ARGUS_ADDR"),
			Destination: &addr,
		},
		&cli.DurationFlag{
			Name:        "exposure-watch-interval",
			Usage:       "Interval of the P90 exposure check (0 disables it)",
			Value:       time.Hour,
			Sources:     cli.EnvVars("ARGUS_EXPOSURE_WATCH_INTERVAL"),
			Destination: &watchInterval,
		},
		&cli.IntFlag{
			Name:        "rollup-concurrency",
			Usage:       "Number of control accounts read in parallel for a project roll-up",
			Value:       usecase.DefaultRollupConcurrency,
			Sources:     cli.EnvVars("ARGUS_ROLLUP_CONCURRENCY"),
			Destination: &rollupConcurrency,
		},
	}

	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load configuration")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			ucOpts := []usecase.Option{
				usecase.WithConfig(cfg),
				usecase.WithRollupConcurrency(rollupConcurrency),
			}

			slackSvc, err := slackCfg.Configure()
			if err != nil {
				return err
			}
			if slackSvc != nil {
				ucOpts = append(ucOpts, usecase.WithSlackService(slackSvc))
				logging.Default().Info("Slack notifications enabled", "slack", slackCfg)
			} else {
				logging.Default().Info("Slack Bot Token not configured, notifications are disabled")
			}

			uc := usecase.New(repo, ucOpts...)

			var watcher *worker.ExposureWatchWorker
			if watchInterval > 0 && slackSvc != nil && cfg.Alert.ExposureP90 > 0 {
				watcher = worker.NewExposureWatchWorker(uc.Risk, watchInterval)
				if err := watcher.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start exposure watch worker")
				}
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc),
				ReadHeaderTimeout: 30 * time.Second,
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr, "repository", repoCfg)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				if watcher != nil {
					watcher.Stop()
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
