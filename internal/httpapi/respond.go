package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/kyaraz/halkaarz/internal/registry"
	"github.com/kyaraz/halkaarz/internal/store"
)

// Error is a request failure with an HTTP status. Handlers return one
// directly or let respondError map known sentinel errors onto it.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func badRequest(format string, args ...any) *Error {
	return &Error{Status: http.StatusBadRequest, Code: "bad_request", Message: fmt.Sprintf(format, args...)}
}

func notFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Code: "not_found", Message: message}
}

// errorBody is the envelope every failed request shares.
type errorBody struct {
	Error     *Error `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":{"code":"internal","message":"response encoding failed"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(body)
}

// respondError writes err through the shared envelope. Unknown errors are
// logged and surface as a plain 500.
func (a *api) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		switch {
		case errors.Is(err, store.ErrNotFound):
			apiErr = notFound("not found")
		case errors.Is(err, registry.ErrUnknownTicker):
			apiErr = notFound("unknown ticker")
		case errors.Is(err, context.DeadlineExceeded):
			apiErr = &Error{Status: http.StatusGatewayTimeout, Code: "timeout", Message: "request timed out"}
		default:
			a.logger.Error("request failed",
				"method", r.Method,
				"path", r.URL.Path,
				"error", err,
				"request_id", middleware.GetReqID(r.Context()),
			)
			apiErr = &Error{Status: http.StatusInternalServerError, Code: "internal", Message: "internal error"}
		}
	}
	writeJSON(w, apiErr.Status, errorBody{Error: apiErr, RequestID: middleware.GetReqID(r.Context())})
}

// decodeJSON reads a request body. Unknown fields pass through so older
// servers tolerate newer clients.
func decodeJSON(r *http.Request, dst any) *Error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return badRequest("invalid json: %v", err)
	}
	return nil
}

// queryInt parses an optional integer query parameter, returning def when
// absent.
func queryInt(r *http.Request, name string, def int) (int, *Error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest("%s must be an integer", name)
	}
	return n, nil
}
