package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/model"
)

var csvHeader = []string{
	"section", "key", "name", "status",
	"pv", "ev", "ac", "bac", "cv", "sv", "cpi", "spi", "eac", "vac",
	"probability", "impact", "score", "expected_cost", "exposure",
}

// csvRenderer writes one row for the project total, one per control account
// and one per risk. Columns that do not apply to a row are empty.
type csvRenderer struct{}

func (r *csvRenderer) ContentType() string { return "text/csv" }
func (r *csvRenderer) Extension() string   { return ".csv" }

func metricsColumns(m metricsSection) []string {
	return []string{m.PV, m.EV, m.AC, m.BAC, m.CV, m.SV, m.CPI, m.SPI, m.EAC, m.VAC}
}

func optionalInt(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}

func (r *csvRenderer) Render(w io.Writer, report *model.ProjectReport) error {
	doc := newDocument(report)
	blank := make([]string, 10)

	rows := [][]string{csvHeader}
	project := append([]string{"project", doc.ProjectID, doc.ProjectName, doc.Status}, metricsColumns(doc.Total)...)
	project = append(project, "", "", "", "", doc.Exposure.Total)
	rows = append(rows, project)

	for _, a := range doc.Accounts {
		row := append([]string{"account", a.WBSCode, a.Name, a.Status}, metricsColumns(a.Metrics)...)
		row = append(row, "", "", "", "", "")
		rows = append(rows, row)
	}

	for _, risk := range doc.Risks {
		row := append([]string{"risk", strconv.FormatInt(risk.ID, 10), risk.Title, risk.Status}, blank...)
		row = append(row,
			optionalInt(risk.Probability),
			optionalInt(risk.Impact),
			strconv.Itoa(risk.Score),
			risk.ExpectedCost,
			risk.Exposure,
		)
		rows = append(rows, row)
	}

	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return goerr.Wrap(err, "failed to write report as CSV")
	}
	return nil
}
