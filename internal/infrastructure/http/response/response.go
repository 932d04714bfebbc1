// Package response writes the JSON envelope shared by every API endpoint
package response

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	apperrors "github.com/ayurwell/portal/pkg/errors"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// MaxBodyBytes caps JSON request bodies
const MaxBodyBytes = 1 << 20

// Envelope represents a standard API response
type Envelope struct {
	Success bool                    `json:"success"`
	Data    interface{}             `json:"data,omitempty"`
	Error   *apperrors.ErrorDetails `json:"error,omitempty"`
	Message string                  `json:"message,omitempty"`
}

// JSON writes data inside a success envelope
func JSON(w http.ResponseWriter, status int, data interface{}) {
	write(w, status, Envelope{Success: true, Data: data})
}

// Message writes a success envelope that only carries a message
func Message(w http.ResponseWriter, status int, message string) {
	write(w, status, Envelope{Success: true, Message: message})
}

// Error maps err to its HTTP status and writes the error envelope.
// Errors that are not AppErrors are reported as internal errors.
func Error(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.NewInternalError("An unexpected error occurred").WithCause(err)
	}

	status := appErr.StatusCode()
	requestID := chimiddleware.GetReqID(r.Context())

	fields := []zap.Field{
		zap.String("request_id", requestID),
		zap.String("code", string(appErr.Code)),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", append(fields, zap.Error(err))...)
		// causes of server errors stay in the log
		appErr = &apperrors.AppError{Code: appErr.Code, Message: appErr.Message}
	} else {
		logger.Debug("Request rejected", append(fields, zap.String("message", appErr.Message))...)
	}

	details := apperrors.ToErrorResponse(appErr, requestID).Error
	write(w, status, Envelope{Success: false, Error: &details})
}

// Decode reads a JSON body into dst
func Decode(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return apperrors.NewBadRequestError("Request body is too large")
		case errors.Is(err, io.EOF):
			return apperrors.NewBadRequestError("Request body is empty")
		default:
			return apperrors.NewBadRequestError("Invalid JSON payload")
		}
	}
	return nil
}

func write(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
