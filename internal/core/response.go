package core

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"maizecast/internal/types"
)

// maxRequestBodySize caps request bodies at 1 MB. A full 50-item batch
// prediction serializes to well under 100 KB, so anything near the cap is
// not a legitimate request.
const maxRequestBodySize = 1 << 20

// APIResponse is the success envelope. Meta carries non-blocking advisories
// such as the stub-predictor warning surfaced in local development.
type APIResponse struct {
	Data interface{}         `json:"data,omitempty"`
	Meta *types.ResponseMeta `json:"meta,omitempty"`
}

// APIErrorResponse is the error envelope.
type APIErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail is the client-facing error body. Details holds per-field
// validation context; RequestID lets a farmer-facing support ticket be
// matched to server logs.
type ErrorDetail struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id"`
}

// JSON marshals data and writes it with the given status. A marshal failure
// degrades to a 500 envelope rather than a half-written body.
func JSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		fallback := APIErrorResponse{
			Error: ErrorDetail{
				Code:      string(types.ErrCodeInternalUnexpected),
				Message:   "failed to marshal response",
				RequestID: types.GetRequestID(r.Context()),
			},
		}
		// Best effort; the connection may already be gone.
		_ = json.NewEncoder(w).Encode(fallback)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// Error writes an error envelope. An AppError anywhere in the chain supplies
// the code, status, and details; anything else collapses to a generic 500.
// Wrapped causes and raw error text never reach the client, only the curated
// AppError message does.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	requestID := types.GetRequestID(r.Context())

	var appErr *types.AppError
	if errors.As(err, &appErr) {
		JSON(w, r, appErr.HTTPStatus(), APIErrorResponse{
			Error: ErrorDetail{
				Code:      string(appErr.Code),
				Message:   appErr.Message,
				Details:   appErr.Details,
				RequestID: requestID,
			},
		})
		return
	}

	JSON(w, r, http.StatusInternalServerError, APIErrorResponse{
		Error: ErrorDetail{
			Code:      string(types.ErrCodeInternalUnexpected),
			Message:   "an unexpected error occurred",
			RequestID: requestID,
		},
	})
}

// DecodeJSON reads the request body into dst under the strict contract the
// prediction endpoints rely on: bodies cap at 1 MB, unknown fields are
// rejected so a typoed parameter name fails loudly instead of silently
// defaulting, and exactly one JSON value is allowed. Every failure mode maps
// to a validation_invalid_json AppError (400).
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	// MaxBytesReader needs w so that writes after the limit trips are handled.
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return mapDecodeError(err)
	}

	if dec.More() {
		return types.NewAppError(
			errCodeValidationInvalidJSON,
			"request body must contain a single JSON object",
			nil,
		)
	}

	return nil
}

// errCodeValidationInvalidJSON stays local to the chassis; the validation_
// prefix maps it to 400.
const errCodeValidationInvalidJSON types.ErrorCode = "validation_invalid_json"

// mapDecodeError translates a json.Decoder failure into an AppError. The
// unknown-field case has no typed error in encoding/json, so it is matched
// on the error text.
func mapDecodeError(err error) *types.AppError {
	var (
		maxBytesErr      *http.MaxBytesError
		syntaxErr        *json.SyntaxError
		unmarshalTypeErr *json.UnmarshalTypeError
	)

	switch {
	case errors.As(err, &maxBytesErr):
		return types.NewAppError(
			errCodeValidationInvalidJSON,
			"request body must not exceed 1MB",
			err,
		)

	case errors.As(err, &syntaxErr):
		return types.NewAppError(
			errCodeValidationInvalidJSON,
			"malformed JSON in request body",
			err,
		)

	case errors.As(err, &unmarshalTypeErr):
		return types.NewAppErrorWithDetails(
			errCodeValidationInvalidJSON,
			"invalid value for field",
			err,
			map[string]any{
				"field":    unmarshalTypeErr.Field,
				"expected": unmarshalTypeErr.Type.String(),
			},
		)

	case strings.HasPrefix(err.Error(), "json: unknown field"):
		return types.NewAppError(
			errCodeValidationInvalidJSON,
			"unknown field in request body: "+strings.TrimPrefix(err.Error(), "json: unknown field "),
			err,
		)

	case errors.Is(err, io.EOF):
		return types.NewAppError(
			errCodeValidationInvalidJSON,
			"request body must not be empty",
			err,
		)

	default:
		return types.NewAppError(
			errCodeValidationInvalidJSON,
			"invalid JSON in request body",
			err,
		)
	}
}
