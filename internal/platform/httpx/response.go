package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/peachwood/api/internal/platform/requestctx"
)

// Error represents the canonical JSON error envelope returned by the API:
// {"success": false, "message": ..., "error": ..., "errors": [...]}.
type Error struct {
	Message string
	Status  int
	// Detail carries internal error text. Handlers populate it only when
	// the environment allows exposing it; it is omitted otherwise.
	Detail string
	// FieldErrors lists per-field validation messages.
	FieldErrors []string
}

// NewError constructs a new Error with the provided parameters.
func NewError(message string, status int) Error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return Error{
		Message: sanitize(message, 512),
		Status:  status,
	}
}

// WithDetail attaches internal error text to the payload.
func (e Error) WithDetail(detail string) Error {
	e.Detail = sanitize(detail, 512)
	return e
}

// WithFieldErrors attaches per-field validation messages.
func (e Error) WithFieldErrors(messages []string) Error {
	if len(messages) == 0 {
		return e
	}
	cleaned := make([]string, 0, len(messages))
	for _, msg := range messages {
		cleaned = append(cleaned, sanitize(msg, 256))
	}
	e.FieldErrors = cleaned
	return e
}

// WriteError writes the structured error as JSON to the provided response writer.
func WriteError(ctx context.Context, w http.ResponseWriter, err Error) {
	status := err.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}

	payload := map[string]any{
		"success": false,
		"message": err.Message,
	}
	if err.Detail != "" {
		payload["error"] = err.Detail
	}
	if len(err.FieldErrors) > 0 {
		payload["errors"] = err.FieldErrors
	}

	writeJSON(ctx, w, status, payload)
}

// WriteData writes a success envelope carrying the response payload.
func WriteData(ctx context.Context, w http.ResponseWriter, status int, data any) {
	writeJSON(ctx, w, status, map[string]any{
		"success": true,
		"data":    data,
	})
}

// WriteMessage writes a success envelope with a human-readable message. The
// data key is omitted when nil.
func WriteMessage(ctx context.Context, w http.ResponseWriter, status int, message string, data any) {
	payload := map[string]any{
		"success": true,
		"message": sanitize(message, 512),
	}
	if data != nil {
		payload["data"] = data
	}
	writeJSON(ctx, w, status, payload)
}

// WriteList writes a success envelope for list responses. The extra map
// carries list metadata such as count, total, page, and pages.
func WriteList(ctx context.Context, w http.ResponseWriter, status int, data any, extra map[string]any) {
	payload := map[string]any{
		"success": true,
		"data":    data,
	}
	for k, v := range extra {
		payload[k] = v
	}
	writeJSON(ctx, w, status, payload)
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		requestctx.Logger(ctx).Warn("response encode failed", zap.Error(err))
	}
}

func sanitize(value string, limit int) string {
	if limit <= 0 {
		limit = 256
	}
	value = strings.ReplaceAll(value, "\n", " ")
	value = strings.ReplaceAll(value, "\r", " ")
	value = strings.TrimSpace(value)
	if len(value) > limit {
		value = value[:limit]
	}
	return value
}
