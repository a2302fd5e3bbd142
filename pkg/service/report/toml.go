package report

import (
	"io"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/argus/pkg/domain/model"
)

type tomlRenderer struct{}

func (r *tomlRenderer) ContentType() string { return "application/toml" }
func (r *tomlRenderer) Extension() string   { return ".toml" }

func (r *tomlRenderer) Render(w io.Writer, report *model.ProjectReport) error {
	if err := toml.NewEncoder(w).Encode(newDocument(report)); err != nil {
		return goerr.Wrap(err, "failed to encode report as TOML")
	}
	return nil
}
