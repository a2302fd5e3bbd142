package errutil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"github.com/secmon-lab/argus/pkg/utils/logging"
	"github.com/secmon-lab/argus/pkg/utils/safe"
)

// Handle logs the error with a message and reports it to Sentry when a client
// is configured. The error is returned as-is.
func Handle(ctx context.Context, err error, msg string) error {
	if err == nil {
		return nil
	}

	logger := logging.From(ctx)

	// Extract goerr values for structured logging
	var ge *goerr.Error
	if errors.As(err, &ge) {
		logger.Error(msg,
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		)
	} else {
		logger.Error(msg, "error", err.Error())
	}

	capture(ctx, err)
	return err
}

// StatusCode maps an error to the HTTP status its kind stands for
func StatusCode(err error) int {
	switch {
	case errors.Is(err, types.ErrInvalidArgument), errors.Is(err, types.ErrInvalidTransition):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrAlreadyExists), errors.Is(err, types.ErrOutOfOrder):
		return http.StatusConflict
	case errors.Is(err, context.Canceled):
		return 499
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error  string         `json:"error"`
	Values map[string]any `json:"values,omitempty"`
}

// HandleHTTP logs the error and writes a JSON error response. A zero
// statusCode derives the status from the error kind. Details of 5xx errors
// are not sent to the client.
func HandleHTTP(ctx context.Context, w http.ResponseWriter, err error, statusCode int) {
	if err == nil {
		return
	}
	if statusCode == 0 {
		statusCode = StatusCode(err)
	}

	logger := logging.From(ctx)

	resp := errorResponse{Error: err.Error()}
	var ge *goerr.Error
	if errors.As(err, &ge) {
		attrs := []any{
			"status", statusCode,
			"error", err.Error(),
			"values", ge.Values(),
		}
		if statusCode >= http.StatusInternalServerError {
			attrs = append(attrs, "stack", ge.Stacks())
			logger.Error("HTTP error", attrs...)
		} else {
			logger.Warn("HTTP error", attrs...)
		}
		resp.Values = ge.Values()
	} else {
		logger.Error("HTTP error",
			"status", statusCode,
			"error", err.Error(),
		)
	}

	if statusCode >= http.StatusInternalServerError {
		capture(ctx, err)
		resp = errorResponse{Error: http.StatusText(statusCode)}
	}

	body, mErr := json.Marshal(resp)
	if mErr != nil {
		http.Error(w, http.StatusText(statusCode), statusCode)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	safe.Write(ctx, w, body)
}

func capture(ctx context.Context, err error) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	if hub.Client() == nil {
		return
	}
	hub.CaptureException(err)
}
