package cli

import (
	"context"
	"io"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/cli/config"
	"github.com/secmon-lab/argus/pkg/domain/interfaces"
	domainConfig "github.com/secmon-lab/argus/pkg/domain/model/config"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"github.com/secmon-lab/argus/pkg/service/archive"
	"github.com/secmon-lab/argus/pkg/usecase"
	"github.com/secmon-lab/argus/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdReport() *cli.Command {
	var projectID string
	var format string
	var output string
	var date string
	var simulate bool
	var iterations int
	var seed uint64
	var appCfg config.App
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "project",
			Aliases:     []string{"p"},
			Usage:       "Project ID",
			Required:    true,
			Destination: &projectID,
		},
		&cli.StringFlag{
			Name:        "format",
			Aliases:     []string{"f"},
			Usage:       "Report format (json, csv, toml, yaml)",
			Value:       types.ReportFormatJSON.String(),
			Destination: &format,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Destination: a file path, gs://bucket/object, or - for stdout",
			Value:       "-",
			Destination: &output,
		},
		&cli.StringFlag{
			Name:        "date",
			Aliases:     []string{"d"},
			Usage:       "Data date of the EVM section (YYYY-MM-DD). Defaults to today",
			Destination: &date,
		},
		&cli.BoolFlag{
			Name:        "simulate",
			Usage:       "Include a Monte Carlo section",
			Destination: &simulate,
		},
		&cli.IntFlag{
			Name:        "iterations",
			Aliases:     []string{"n"},
			Usage:       "Monte Carlo iterations (with --simulate)",
			Destination: &iterations,
		},
		&cli.Uint64Flag{
			Name:        "seed",
			Usage:       "Monte Carlo seed (with --simulate)",
			Destination: &seed,
		},
	}
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:    "report",
		Aliases: []string{"r"},
		Usage:   "Export a project report to a file or Cloud Storage",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			reportFormat, err := types.ParseReportFormat(format)
			if err != nil {
				return err
			}
			pid := types.ProjectID(projectID)
			if err := pid.Validate(); err != nil {
				return err
			}

			in := usecase.ReportInput{At: time.Now().UTC()}
			if date != "" {
				if in.At, err = parseDay("date", date); err != nil {
					return err
				}
			}
			if simulate {
				sim := simulateInput(c, iterations, seed)
				in.Simulation = &sim
			}

			cfg, err := appCfg.Configure()
			if err != nil {
				return err
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

			return exportReport(ctx, repo, cfg, exportParams{
				projectID: pid,
				format:    reportFormat,
				input:     in,
				output:    output,
				stdout:    c.Root().Writer,
			})
		},
	}
}

type exportParams struct {
	projectID types.ProjectID
	format    types.ReportFormat
	input     usecase.ReportInput
	output    string
	stdout    io.Writer
}

func exportReport(ctx context.Context, repo interfaces.Repository, cfg *domainConfig.Config, p exportParams) error {
	uc := usecase.New(repo, usecase.WithConfig(cfg))

	write := func(w io.Writer) error {
		return uc.Report.Export(ctx, p.projectID, p.format, p.input, w)
	}
	if p.output == "" || p.output == "-" {
		return write(p.stdout)
	}

	renderer, err := uc.Report.Renderer(p.format)
	if err != nil {
		return err
	}

	store := archive.New()
	defer func() {
		if err := store.Close(); err != nil {
			logging.From(ctx).Warn("failed to close storage client", "error", err.Error())
		}
	}()
	return store.Store(ctx, p.output, renderer.ContentType(), write)
}
