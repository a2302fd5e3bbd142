package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/cli/config"
	"github.com/secmon-lab/argus/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var appCfg config.App
	var records string
	var register string

	var flags []cli.Flag
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:        "records",
			Usage:       "Also validate a YAML records file used by calc evm",
			Destination: &records,
		},
		&cli.StringFlag{
			Name:        "register",
			Usage:       "Also validate a YAML risk register used by calc simulate",
			Destination: &register,
		},
	)

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the configuration file and optional calc input files",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			if appCfg.Path() == "" && records == "" && register == "" {
				return goerr.New("nothing to validate: set --config, --records or --register")
			}

			if appCfg.Path() != "" {
				cfg, err := appCfg.Configure()
				if err != nil {
					return goerr.Wrap(err, "configuration validation failed")
				}
				logger.Info("Configuration validation passed",
					"path", appCfg.Path(),
					"probability_levels", len(cfg.Risk.Probability),
					"impact_levels", len(cfg.Risk.Impact),
					"iterations", cfg.Simulation.Iterations,
					"percentiles", cfg.Simulation.Percentiles,
				)
			}

			if records != "" {
				_, accounts, err := loadRecords(records)
				if err != nil {
					return goerr.Wrap(err, "records validation failed")
				}
				logger.Info("Records validation passed", "path", records, "accounts", len(accounts))
			}

			if register != "" {
				risks, err := loadRegister(register)
				if err != nil {
					return goerr.Wrap(err, "register validation failed")
				}
				logger.Info("Register validation passed", "path", register, "risks", len(risks))
			}

			return nil
		},
	}
}
