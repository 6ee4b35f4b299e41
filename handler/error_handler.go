package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/identity/pkg/binder"
	"github.com/dmitrymomot/identity/pkg/logger"
	"github.com/dmitrymomot/identity/pkg/requestid"
	"github.com/dmitrymomot/identity/pkg/validator"
)

// ErrorInfo contains classified error information
type ErrorInfo struct {
	StatusCode int
	Key        string
	Message    string
	Details    map[string][]string
	LogLevel   slog.Level
}

// ClassifyError maps err to the status and client-facing message. Anything
// unrecognised is a 500 with a generic message.
func ClassifyError(err error) ErrorInfo {
	info := ErrorInfo{
		StatusCode: http.StatusInternalServerError,
		Key:        ErrInternalServerError.Key,
		Message:    "An error occurred processing your request",
	}

	var httpErr HTTPError
	switch {
	case errors.As(err, &httpErr):
		info.StatusCode = httpErr.Code
		info.Key = httpErr.Key
		info.Message = httpErr.Message
		if info.Message == "" {
			info.Message = http.StatusText(httpErr.Code)
		}
	case validator.IsValidationError(err):
		info.StatusCode = http.StatusBadRequest
		info.Key = "validation_error"
		info.Message = "Validation failed"
		info.Details = validator.ExtractValidationErrors(err).Map()
	case errors.Is(err, binder.ErrUnsupportedMediaType):
		info.StatusCode = http.StatusUnsupportedMediaType
		info.Key = ErrUnsupportedMediaType.Key
		info.Message = http.StatusText(http.StatusUnsupportedMediaType)
	case errors.Is(err, binder.ErrFailedToParseJSON), errors.Is(err, binder.ErrFailedToParseForm):
		info.StatusCode = http.StatusBadRequest
		info.Key = ErrBadRequest.Key
		info.Message = "Malformed request body"
	}

	info.LogLevel = slog.LevelError
	if info.StatusCode < http.StatusInternalServerError {
		info.LogLevel = slog.LevelWarn
	}
	return info
}

// NewErrorHandler logs err with the request id and writes a JSON error body.
// A nil logger uses slog.Default.
func NewErrorHandler(log *slog.Logger) ErrorHandler {
	if log == nil {
		log = slog.Default()
	}

	return func(ctx Context, err error) {
		req := ctx.Request()
		info := ClassifyError(err)

		log.LogAttrs(req.Context(), info.LogLevel, "request error",
			logger.RequestID(requestid.FromContext(req.Context())),
			logger.Error(err),
			slog.Int("status_code", info.StatusCode),
			slog.String("method", req.Method),
			slog.String("path", req.URL.Path),
			logger.Component("error_handler"),
		)

		w := ctx.ResponseWriter()
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(info.StatusCode)
		if encErr := json.NewEncoder(w).Encode(ErrorBody{Error: ErrorDetail{
			Code:    info.Key,
			Message: info.Message,
			Details: info.Details,
		}}); encErr != nil {
			log.WarnContext(req.Context(), "failed to write error body", logger.Error(encErr))
		}
	}
}
