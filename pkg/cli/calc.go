package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/cli/config"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/evm"
	"github.com/secmon-lab/argus/pkg/exposure"
	"github.com/secmon-lab/argus/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdCalc() *cli.Command {
	return &cli.Command{
		Name:  "calc",
		Usage: "Offline calculations from YAML files, without a repository",
		Commands: []*cli.Command{
			cmdCalcEVM(),
			cmdCalcSimulate(),
		},
	}
}

func noColorFlag(dst *bool) cli.Flag {
	return &cli.BoolFlag{
		Name:        "no-color",
		Usage:       "Disable colored output",
		Sources:     cli.EnvVars("NO_COLOR"),
		Destination: dst,
	}
}

func cmdCalcEVM() *cli.Command {
	var input string
	var date string
	var noColor bool
	var appCfg config.App

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "YAML file with control accounts and their period records",
			Required:    true,
			Destination: &input,
		},
		&cli.StringFlag{
			Name:        "date",
			Aliases:     []string{"d"},
			Usage:       "Data date (YYYY-MM-DD). Defaults to the file's data_date or the latest record",
			Destination: &date,
		},
		noColorFlag(&noColor),
	}
	flags = append(flags, appCfg.Flags()...)

	return &cli.Command{
		Name:  "evm",
		Usage: "Compute cumulative earned value metrics per control account and for the project",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := appCfg.Configure()
			if err != nil {
				return err
			}

			file, accounts, err := loadRecords(input)
			if err != nil {
				return err
			}

			if date == "" {
				date = file.DataDate
			}
			at := latestRecordDate(accounts)
			if date != "" {
				if at, err = parseDay("date", date); err != nil {
					return err
				}
			}

			rows := make([]*model.AccountMetrics, 0, len(accounts))
			cumulative := make([]*model.CumulativeMetrics, 0, len(accounts))
			for _, a := range accounts {
				cm, err := evm.Cumulative(a.records, at)
				if err != nil {
					return goerr.Wrap(err, "failed to compute account metrics", goerr.V("wbs_code", a.code))
				}
				cumulative = append(cumulative, cm)
				rows = append(rows, &model.AccountMetrics{
					ControlAccount: &model.ControlAccount{WBSCode: a.code, Name: a.name},
					Cumulative:     cm,
					Status:         evm.Classify(&cm.Metrics, cfg.Alert),
				})
			}

			total, err := evm.Rollup(cumulative)
			if err != nil {
				return err
			}

			p := newPrinter(c.Root().Writer, noColor)
			return p.evmTable(at, rows, total, evm.Classify(total, cfg.Alert))
		},
	}
}

func latestRecordDate(accounts []*offlineAccount) time.Time {
	var latest time.Time
	for _, a := range accounts {
		for _, r := range a.records {
			if r.DataDate.After(latest) {
				latest = r.DataDate
			}
		}
	}
	return latest
}

func cmdCalcSimulate() *cli.Command {
	var input string
	var iterations int
	var seed uint64
	var noColor bool
	var appCfg config.App

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "YAML risk register",
			Required:    true,
			Destination: &input,
		},
		&cli.IntFlag{
			Name:        "iterations",
			Aliases:     []string{"n"},
			Usage:       "Number of Monte Carlo iterations. Defaults to the configured value",
			Destination: &iterations,
		},
		&cli.Uint64Flag{
			Name:        "seed",
			Usage:       "Random seed. A random one is drawn and printed when unset",
			Destination: &seed,
		},
		noColorFlag(&noColor),
	}
	flags = append(flags, appCfg.Flags()...)

	return &cli.Command{
		Name:  "simulate",
		Usage: "Rank a risk register by exposure and run a Monte Carlo simulation",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := appCfg.Configure()
			if err != nil {
				return err
			}

			risks, err := loadRegister(input)
			if err != nil {
				return err
			}

			in := simulateInput(c, iterations, seed)
			result, err := exposure.Simulate(ctx, risks, in.Options(cfg.Simulation))
			if err != nil {
				return err
			}

			p := newPrinter(c.Root().Writer, noColor)
			if err := p.exposureTable(exposure.Deterministic(risks)); err != nil {
				return err
			}
			return p.simulation(result, cfg.Alert.ExposureP90)
		},
	}
}

// simulateInput leaves unset flags nil so the configured defaults apply
func simulateInput(c *cli.Command, iterations int, seed uint64) usecase.SimulateInput {
	var in usecase.SimulateInput
	if c.IsSet("iterations") {
		in.Iterations = &iterations
	}
	if c.IsSet("seed") {
		in.Seed = &seed
	}
	return in
}

type printer struct {
	w       io.Writer
	ok      func(a ...any) string
	warn    func(a ...any) string
	crit    func(a ...any) string
	heading func(a ...any) string
}

func newPrinter(w io.Writer, noColor bool) *printer {
	if noColor {
		color.NoColor = true
	}
	return &printer{
		w:       w,
		ok:      color.New(color.FgGreen).SprintFunc(),
		warn:    color.New(color.FgYellow).SprintFunc(),
		crit:    color.New(color.FgRed, color.Bold).SprintFunc(),
		heading: color.New(color.Bold).SprintFunc(),
	}
}

func (p *printer) status(s model.PerformanceStatus) string {
	switch s {
	case model.PerformanceCritical:
		return p.crit(s)
	case model.PerformanceWatch:
		return p.warn(s)
	default:
		return p.ok(s)
	}
}

func index(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.4f", *v)
}

// colored cells go last: escape sequences would throw off tabwriter widths
func (p *printer) evmTable(at time.Time, rows []*model.AccountMetrics, total *model.Metrics, status model.PerformanceStatus) error {
	if _, err := fmt.Fprintln(p.w, p.heading("EVM as of "+at.Format(time.DateOnly))); err != nil {
		return goerr.Wrap(err, "failed to write output")
	}

	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WBS\tNAME\tPV\tEV\tAC\tBAC\tCV\tSV\tCPI\tSPI\tEAC\tVAC\tSTATUS")
	line := func(code, name string, m *model.Metrics, s model.PerformanceStatus) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			code, name,
			m.PV.StringFixed(2), m.EV.StringFixed(2), m.AC.StringFixed(2), m.BAC.StringFixed(2),
			m.CV.StringFixed(2), m.SV.StringFixed(2),
			index(m.CPI), index(m.SPI),
			m.EAC.StringFixed(2), m.VAC.StringFixed(2),
			p.status(s))
	}
	for _, r := range rows {
		line(r.ControlAccount.WBSCode.String(), r.ControlAccount.Name, &r.Cumulative.Metrics, r.Status)
	}
	line("TOTAL", "", total, status)

	if err := tw.Flush(); err != nil {
		return goerr.Wrap(err, "failed to write output")
	}
	return nil
}

func (p *printer) exposureTable(e *model.Exposure) error {
	if _, err := fmt.Fprintln(p.w, p.heading(fmt.Sprintf("Exposure: %s (%d active risks)", e.Total.StringFixed(2), e.ActiveRisks))); err != nil {
		return goerr.Wrap(err, "failed to write output")
	}

	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tTITLE\tP\tI\tSCORE\tEXPECTED COST\tEXPOSURE")
	for i, item := range e.Items {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%s\t%s\n",
			i+1, item.Title, item.Probability, item.Impact, item.Score,
			item.ExpectedCost.StringFixed(2), item.Exposure.StringFixed(2))
	}
	if err := tw.Flush(); err != nil {
		return goerr.Wrap(err, "failed to write output")
	}
	return nil
}

func (p *printer) simulation(r *model.SimulationResult, limit float64) error {
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, p.heading("Monte Carlo"))
	fmt.Fprintf(tw, "iterations\t%d\n", r.Iterations)
	fmt.Fprintf(tw, "seed\t%d\n", r.Seed)
	fmt.Fprintf(tw, "deterministic\t%.2f\n", r.Deterministic)
	fmt.Fprintf(tw, "mean\t%.2f\n", r.Mean)
	fmt.Fprintf(tw, "std dev\t%.2f\n", r.StdDev)
	fmt.Fprintf(tw, "min\t%.2f\n", r.Min)
	fmt.Fprintf(tw, "max\t%.2f\n", r.Max)
	for _, pv := range r.Percentiles {
		value := fmt.Sprintf("%.2f", pv.Value)
		if limit > 0 && pv.Percentile == 90 && pv.Value > limit {
			value = p.crit(value)
		}
		fmt.Fprintf(tw, "P%g\t%s\n", pv.Percentile, value)
	}
	if err := tw.Flush(); err != nil {
		return goerr.Wrap(err, "failed to write output")
	}
	return nil
}
