package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/pocketbank/backend/internal/ledger"
)

// ErrorResponse represents error response structure
type ErrorResponse struct {
	Error   string            `json:"error"`             // Error message
	Details map[string]string `json:"details,omitempty"` // Validation details
}

// ValidationHelper provides shared validation functionality
type ValidationHelper struct {
	validator *validator.Validate
}

// NewValidationHelper creates a new validation helper
func NewValidationHelper() *ValidationHelper {
	return &ValidationHelper{
		validator: validator.New(),
	}
}

// ValidateStruct validates a struct and returns validation errors
func (vh *ValidationHelper) ValidateStruct(s any) error {
	return vh.validator.Struct(s)
}

// DecodeJSONBody decodes a single JSON object into dst, rejecting unknown
// fields, oversized bodies and trailing content.
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) error {
	maxBytes := 1_048_576 // 1 MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("request body must only contain a single JSON object")
	}
	return nil
}

// SendJSON writes v as a JSON response with the given status code.
func SendJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// SendErrorResponse sends a JSON error response
func SendErrorResponse(w http.ResponseWriter, message string, statusCode int, validationErr error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResp := ErrorResponse{Error: message}
	if validationErr != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(validationErr, &validationErrors) {
			errorResp.Details = make(map[string]string)
			for _, err := range validationErrors {
				errorResp.Details[err.Field()] = fmt.Sprintf("Field Validation Failed on '%s' tag", err.Tag())
			}
		}
	}

	json.NewEncoder(w).Encode(errorResp)
}

// SendLedgerError maps ledger error taxonomy to HTTP status codes.
func SendLedgerError(w http.ResponseWriter, err error) {
	switch {
	case ledger.IsInvalidArgument(err):
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
	case ledger.IsNotFound(err) || errors.Is(err, ledger.ErrTransactionNotFound):
		SendErrorResponse(w, err.Error(), http.StatusNotFound, nil)
	case errors.Is(err, ledger.ErrAccountHalted):
		SendErrorResponse(w, err.Error(), http.StatusConflict, nil)
	case errors.Is(err, ledger.ErrInternalInconsistency):
		SendErrorResponse(w, err.Error(), http.StatusInternalServerError, nil)
	default:
		SendErrorResponse(w, "Failed to process request", http.StatusInternalServerError, nil)
	}
}
