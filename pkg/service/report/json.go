package report

import (
	"encoding/json"
	"io"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/model"
)

// jsonRenderer writes the full report model, matrix included
type jsonRenderer struct{}

func (r *jsonRenderer) ContentType() string { return "application/json" }
func (r *jsonRenderer) Extension() string   { return ".json" }

func (r *jsonRenderer) Render(w io.Writer, report *model.ProjectReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return goerr.Wrap(err, "failed to encode report as JSON")
	}
	return nil
}
