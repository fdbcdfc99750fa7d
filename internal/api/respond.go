package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/fileharbor/fileharbor/pkg/storage"
)

// statusClientClosedRequest is the non-standard status nginx uses when the
// client disconnects before the response is written.
const statusClientClosedRequest = 499

// errorBody is the uniform error envelope. Error carries a stable machine
// code, Message the human-readable text, Details the structured fields of the
// underlying storage error.
type errorBody struct {
	Error   string         `json:"error"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func respondErrorBody(w http.ResponseWriter, status int, code, message string) {
	respond(w, status, errorBody{Error: code, Message: message})
}

// respondError maps an operation failure to its HTTP representation and logs
// server-side failures.
func (rt *Router) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := errorToResponse(err)
	if status >= http.StatusInternalServerError {
		rt.log.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
	}
	respond(w, status, body)
}

func errorToResponse(err error) (int, errorBody) {
	var serr *storage.Error
	if errors.As(err, &serr) {
		body := errorBody{Error: serr.Kind.String(), Message: serr.Message}
		if body.Message == "" {
			body.Message = serr.Kind.String()
		}
		details := make(map[string]any)
		if serr.Path != "" {
			details["path"] = serr.Path
		}
		if serr.Size > 0 {
			details["size"] = serr.Size
		}
		if len(details) > 0 {
			body.Details = details
		}
		return statusForKind(serr.Kind), body
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusRequestTimeout, errorBody{Error: "request_timeout", Message: "request timed out"}
	}
	if errors.Is(err, context.Canceled) {
		// Client went away mid-request; nobody reads the body, but the
		// status keeps it out of the server-error logs. 499 follows the
		// nginx convention for client-closed requests.
		return statusClientClosedRequest, errorBody{Error: "client_closed_request", Message: "client closed request"}
	}

	return http.StatusInternalServerError, errorBody{Error: "internal_error", Message: "internal server error"}
}

func statusForKind(kind storage.Kind) int {
	switch kind {
	case storage.KindInvalidPath, storage.KindBadRequest:
		return http.StatusBadRequest
	case storage.KindNotFound:
		return http.StatusNotFound
	case storage.KindFileExists:
		return http.StatusConflict
	case storage.KindFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case storage.KindInvalidFileType:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a JSON request body, rejecting empty bodies.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("empty request body")
	}
	return json.NewDecoder(r.Body).Decode(dst)
}
