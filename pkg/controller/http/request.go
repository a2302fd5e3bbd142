package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"github.com/secmon-lab/argus/pkg/utils/errutil"
	"github.com/secmon-lab/argus/pkg/utils/safe"
)

// maxBodyBytes caps request bodies
const maxBodyBytes = 1 << 20

func decodeJSON(r *http.Request, w http.ResponseWriter, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return goerr.Wrap(types.ErrInvalidArgument, "invalid request body", goerr.V("cause", err.Error()))
	}
	return nil
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, data)
}

func handleError(w http.ResponseWriter, r *http.Request, err error) {
	errutil.HandleHTTP(r.Context(), w, err, 0)
}

// parseDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp.
// An empty value is the zero time.
func parseDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, goerr.Wrap(types.ErrInvalidArgument, "invalid date",
			goerr.V(types.FieldKey, field), goerr.V(types.ValueKey, value))
	}
	return t.UTC(), nil
}

func queryDate(r *http.Request, field string) (time.Time, error) {
	return parseDate(field, r.URL.Query().Get(field))
}

func projectID(r *http.Request) types.ProjectID {
	return types.ProjectID(chi.URLParam(r, "projectID"))
}

func accountID(r *http.Request) types.ControlAccountID {
	return types.ControlAccountID(chi.URLParam(r, "accountID"))
}

func riskID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "riskID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, goerr.Wrap(types.ErrInvalidArgument, "invalid risk ID",
			goerr.V(types.FieldKey, "riskID"), goerr.V(types.ValueKey, raw))
	}
	return id, nil
}
