package report

import (
	"strconv"
	"time"

	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/shopspring/decimal"
)

// document is the flat view of a report used by the text formats. Amounts are
// decimal strings and undefined indices are empty.
type document struct {
	ProjectID   string             `toml:"project_id" yaml:"project_id"`
	ProjectName string             `toml:"project_name" yaml:"project_name"`
	Currency    string             `toml:"currency,omitempty" yaml:"currency,omitempty"`
	GeneratedAt time.Time          `toml:"generated_at" yaml:"generated_at"`
	DataDate    time.Time          `toml:"data_date" yaml:"data_date"`
	Status      string             `toml:"status" yaml:"status"`
	Total       metricsSection     `toml:"total" yaml:"total"`
	Exposure    exposureSection    `toml:"exposure" yaml:"exposure"`
	Simulation  *simulationSection `toml:"simulation,omitempty" yaml:"simulation,omitempty"`
	Accounts    []accountSection   `toml:"accounts" yaml:"accounts"`
	Risks       []riskSection      `toml:"risks" yaml:"risks"`
}

type metricsSection struct {
	PV              string `toml:"pv" yaml:"pv"`
	EV              string `toml:"ev" yaml:"ev"`
	AC              string `toml:"ac" yaml:"ac"`
	BAC             string `toml:"bac" yaml:"bac"`
	CV              string `toml:"cv" yaml:"cv"`
	SV              string `toml:"sv" yaml:"sv"`
	CPI             string `toml:"cpi,omitempty" yaml:"cpi,omitempty"`
	SPI             string `toml:"spi,omitempty" yaml:"spi,omitempty"`
	EAC             string `toml:"eac" yaml:"eac"`
	ETC             string `toml:"etc" yaml:"etc"`
	VAC             string `toml:"vac" yaml:"vac"`
	TCPI            string `toml:"tcpi,omitempty" yaml:"tcpi,omitempty"`
	PercentComplete string `toml:"percent_complete,omitempty" yaml:"percent_complete,omitempty"`
}

type accountSection struct {
	WBSCode string         `toml:"wbs_code" yaml:"wbs_code"`
	Name    string         `toml:"name" yaml:"name"`
	Status  string         `toml:"status" yaml:"status"`
	Periods int            `toml:"periods" yaml:"periods"`
	Metrics metricsSection `toml:"metrics" yaml:"metrics"`
}

type exposureSection struct {
	Total       string `toml:"total" yaml:"total"`
	ActiveRisks int    `toml:"active_risks" yaml:"active_risks"`
}

type simulationSection struct {
	Iterations  int                `toml:"iterations" yaml:"iterations"`
	Seed        uint64             `toml:"seed" yaml:"seed"`
	Mean        float64            `toml:"mean" yaml:"mean"`
	StdDev      float64            `toml:"std_dev" yaml:"std_dev"`
	Min         float64            `toml:"min" yaml:"min"`
	Max         float64            `toml:"max" yaml:"max"`
	Percentiles map[string]float64 `toml:"percentiles" yaml:"percentiles"`
}

type riskSection struct {
	ID           int64  `toml:"id" yaml:"id"`
	Title        string `toml:"title" yaml:"title"`
	Status       string `toml:"status" yaml:"status"`
	Probability  int    `toml:"probability,omitempty" yaml:"probability,omitempty"`
	Impact       int    `toml:"impact,omitempty" yaml:"impact,omitempty"`
	Score        int    `toml:"score" yaml:"score"`
	ExpectedCost string `toml:"expected_cost" yaml:"expected_cost"`
	Exposure     string `toml:"exposure" yaml:"exposure"`
}

func formatIndex(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 4, 64)
}

func formatPercentile(p float64) string {
	return "p" + strconv.FormatFloat(p, 'f', -1, 64)
}

func newMetricsSection(m *model.Metrics) metricsSection {
	if m == nil {
		return metricsSection{}
	}
	return metricsSection{
		PV:              m.PV.String(),
		EV:              m.EV.String(),
		AC:              m.AC.String(),
		BAC:             m.BAC.String(),
		CV:              m.CV.String(),
		SV:              m.SV.String(),
		CPI:             formatIndex(m.CPI),
		SPI:             formatIndex(m.SPI),
		EAC:             m.EAC.String(),
		ETC:             m.ETC.String(),
		VAC:             m.VAC.String(),
		TCPI:            formatIndex(m.TCPI),
		PercentComplete: formatIndex(m.PercentComplete),
	}
}

func newDocument(r *model.ProjectReport) *document {
	doc := &document{
		GeneratedAt: r.GeneratedAt,
		Accounts:    []accountSection{},
		Risks:       []riskSection{},
	}
	if r.Project != nil {
		doc.ProjectID = r.Project.ID.String()
		doc.ProjectName = r.Project.Name
		doc.Currency = r.Project.Currency
	}

	if r.EVM != nil {
		doc.DataDate = r.EVM.DataDate
		doc.Status = string(r.EVM.Status)
		doc.Total = newMetricsSection(r.EVM.Total)
		for _, am := range r.EVM.Accounts {
			section := accountSection{Status: string(am.Status)}
			if am.ControlAccount != nil {
				section.WBSCode = am.ControlAccount.WBSCode.String()
				section.Name = am.ControlAccount.Name
			}
			if am.Cumulative != nil {
				section.Periods = am.Cumulative.Periods
				section.Metrics = newMetricsSection(&am.Cumulative.Metrics)
			}
			doc.Accounts = append(doc.Accounts, section)
		}
	}

	exposures := make(map[int64]*model.ExposureItem)
	doc.Exposure.Total = decimal.Zero.String()
	if r.Exposure != nil {
		doc.Exposure.Total = r.Exposure.Total.String()
		doc.Exposure.ActiveRisks = r.Exposure.ActiveRisks
		for _, item := range r.Exposure.Items {
			exposures[item.RiskID] = item
		}
	}

	for _, risk := range r.Risks {
		section := riskSection{
			ID:           risk.ID,
			Title:        risk.Title,
			Status:       risk.Status.Normalize().String(),
			ExpectedCost: risk.ExpectedCost().String(),
			Exposure:     decimal.Zero.String(),
		}
		if a := risk.Effective(); a != nil {
			section.Probability = a.Probability.Int()
			section.Impact = a.Impact.Int()
			section.Score = a.Score()
		}
		if item, ok := exposures[risk.ID]; ok {
			section.Exposure = item.Exposure.String()
		}
		doc.Risks = append(doc.Risks, section)
	}

	if s := r.Simulation; s != nil {
		sim := &simulationSection{
			Iterations:  s.Iterations,
			Seed:        s.Seed,
			Mean:        s.Mean,
			StdDev:      s.StdDev,
			Min:         s.Min,
			Max:         s.Max,
			Percentiles: make(map[string]float64, len(s.Percentiles)),
		}
		for _, pv := range s.Percentiles {
			sim.Percentiles[formatPercentile(pv.Percentile)] = pv.Value
		}
		doc.Simulation = sim
	}

	return doc
}
