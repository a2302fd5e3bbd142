package http

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"github.com/secmon-lab/argus/pkg/usecase"
	"github.com/secmon-lab/argus/pkg/utils/safe"
)

// report renders the project report. The body is buffered so that a failure
// still produces a JSON error response.
func (s *Server) report(w http.ResponseWriter, r *http.Request) {
	format, err := types.ParseReportFormat(r.URL.Query().Get("format"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	at, err := queryDate(r, "date")
	if err != nil {
		handleError(w, r, err)
		return
	}
	renderer, err := s.uc.Report.Renderer(format)
	if err != nil {
		handleError(w, r, err)
		return
	}

	in := usecase.ReportInput{At: at}
	if raw := r.URL.Query().Get("seed"); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			handleError(w, r, goerr.Wrap(types.ErrInvalidArgument, "seed must be an unsigned integer",
				goerr.V(types.FieldKey, "seed"), goerr.V(types.ValueKey, raw)))
			return
		}
		in.Simulation = &usecase.SimulateInput{Seed: &seed}
	}

	var buf bytes.Buffer
	if err := s.uc.Report.Export(r.Context(), projectID(r), format, in, &buf); err != nil {
		handleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", renderer.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+projectID(r).String()+renderer.Extension()+`"`)
	w.WriteHeader(http.StatusOK)
	safe.Copy(r.Context(), w, &buf)
}
