package report

import (
	"io"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
)

// Renderer writes a project report in one format
type Renderer interface {
	Render(w io.Writer, report *model.ProjectReport) error
	ContentType() string
	Extension() string
}

// Service dispatches rendering by format
type Service struct {
	renderers map[types.ReportFormat]Renderer
}

// New returns a service with every built-in renderer registered
func New() *Service {
	return &Service{
		renderers: map[types.ReportFormat]Renderer{
			types.ReportFormatJSON: &jsonRenderer{},
			types.ReportFormatCSV:  &csvRenderer{},
			types.ReportFormatTOML: &tomlRenderer{},
			types.ReportFormatYAML: &yamlRenderer{},
		},
	}
}

// Renderer returns the renderer of a format
func (s *Service) Renderer(format types.ReportFormat) (Renderer, error) {
	r, ok := s.renderers[format]
	if !ok {
		return nil, goerr.Wrap(types.ErrInvalidArgument, "unsupported report format",
			goerr.V(types.FieldKey, "format"), goerr.V(types.ValueKey, format))
	}
	return r, nil
}

// Render writes the report to w in the given format
func (s *Service) Render(w io.Writer, format types.ReportFormat, report *model.ProjectReport) error {
	r, err := s.Renderer(format)
	if err != nil {
		return err
	}
	if err := r.Render(w, report); err != nil {
		return goerr.Wrap(err, "failed to render report", goerr.V("format", format))
	}
	return nil
}
