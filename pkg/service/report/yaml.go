package report

import (
	"io"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"gopkg.in/yaml.v3"
)

type yamlRenderer struct{}

func (r *yamlRenderer) ContentType() string { return "application/yaml" }
func (r *yamlRenderer) Extension() string   { return ".yaml" }

func (r *yamlRenderer) Render(w io.Writer, report *model.ProjectReport) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(newDocument(report)); err != nil {
		return goerr.Wrap(err, "failed to encode report as YAML")
	}
	if err := enc.Close(); err != nil {
		return goerr.Wrap(err, "failed to flush YAML encoder")
	}
	return nil
}
