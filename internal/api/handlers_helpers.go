// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/database"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/validation"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Error codes returned in models.APIError.
const (
	codeValidation       = "VALIDATION_ERROR"
	codeInvalidJSON      = "INVALID_JSON"
	codeNotFound         = "NOT_FOUND"
	codeUnknownMovie     = "UNKNOWN_MOVIE_REFERENCE"
	codeDuplicate        = "DUPLICATE"
	codeEmptyProfile     = "EMPTY_PROFILE"
	codeDimension        = "DIMENSION_MISMATCH"
	codeDatabase         = "DATABASE_ERROR"
	codeUnavailable      = "SERVICE_UNAVAILABLE"
	codeInternal         = "INTERNAL_ERROR"
	codeTooManyRequests  = "TOO_MANY_REQUESTS"
	codeMethodNotAllowed = "METHOD_NOT_ALLOWED"
)

// sanitizeLogValue escapes control characters so user input cannot forge
// log lines.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&result, "\\x%02x", r)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON writes response with an ETag computed over the body.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Vary", "Accept-Encoding")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("ETag", generateETag(data))
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// generateETag returns a weak FNV-1a hash of data.
func generateETag(data []byte) string {
	hash := uint32(2166136261)
	for _, b := range data {
		hash ^= uint32(b)
		hash *= 16777619
	}
	return `W/"` + strconv.FormatUint(uint64(hash), 16) + `"`
}

// respondSuccess wraps data in a success envelope.
func respondSuccess(w http.ResponseWriter, status int, data interface{}, start time.Time, cached bool) {
	respondJSON(w, status, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			Cached:      cached,
		},
	})
}

func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		logging.Error().Str("code", sanitizeLogValue(code)).Str("error", sanitizeLogValue(err.Error())).Msg("API Error")
	}
	respondAPIError(w, status, &models.APIError{Code: code, Message: message})
}

func respondAPIError(w http.ResponseWriter, status int, apiErr *models.APIError) {
	respondJSON(w, status, &models.APIResponse{
		Status: "error",
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
		Error: apiErr,
	})
}

// respondServiceError maps storage and engine errors onto HTTP statuses.
// Client mistakes are not logged as errors.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		respondError(w, http.StatusNotFound, codeNotFound, "Movie not found", nil)
	case errors.Is(err, recommend.ErrUnknownMovieReference):
		respondError(w, http.StatusUnprocessableEntity, codeUnknownMovie, err.Error(), nil)
	case errors.Is(err, database.ErrDuplicate):
		respondError(w, http.StatusConflict, codeDuplicate, err.Error(), nil)
	case errors.Is(err, recommend.ErrEmptyProfile):
		respondError(w, http.StatusBadRequest, codeEmptyProfile, "Profile names no movies", nil)
	case errors.Is(err, database.ErrUnavailable):
		respondError(w, http.StatusServiceUnavailable, codeUnavailable, "Database temporarily unavailable", err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		respondError(w, http.StatusServiceUnavailable, codeUnavailable, "Request timed out", err)
	case errors.Is(err, recommend.ErrDimensionMismatch):
		respondError(w, http.StatusInternalServerError, codeDimension, "Feature vectors are incompatible", err)
	default:
		logging.Ctx(r.Context()).Error().Err(err).Str("path", sanitizeLogValue(r.URL.Path)).Msg("Request failed")
		respondError(w, http.StatusInternalServerError, codeInternal, "Internal server error", nil)
	}
}

// errorType names err for the recommendation error metric.
func errorType(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, recommend.ErrUnknownMovieReference):
		return "unknown_movie"
	case errors.Is(err, recommend.ErrEmptyProfile):
		return "empty_profile"
	case errors.Is(err, recommend.ErrDimensionMismatch):
		return "dimension_mismatch"
	case errors.Is(err, database.ErrUnavailable):
		return "unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "internal"
	}
}

func validateRequest(v interface{}) *models.APIError {
	errs := validation.ValidateStruct(v)
	if errs == nil {
		return nil
	}
	return &models.APIError{
		Code:    validation.Code,
		Message: errs.Error(),
		Details: errs.Details(),
	}
}

// decodeAndValidate reads a JSON body into dst and validates it. On failure
// the error response has been written and false is returned.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, codeInvalidJSON, "Request body is not valid JSON", nil)
		return false
	}
	if apiErr := validateRequest(dst); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return false
	}
	return true
}

// getIntParam reads an integer query parameter. Missing values return
// defaultValue; malformed or out-of-range values return an error.
func getIntParam(r *http.Request, key string, defaultValue, minValue, maxValue int) (int, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	if n < minValue || n > maxValue {
		return 0, fmt.Errorf("%s must be between %d and %d", key, minValue, maxValue)
	}
	return n, nil
}

// respondParamError writes a VALIDATION_ERROR for a query parameter.
func respondParamError(w http.ResponseWriter, key string, err error) {
	respondAPIError(w, http.StatusBadRequest, &models.APIError{
		Code:    codeValidation,
		Message: err.Error(),
		Details: map[string]interface{}{"field": key},
	})
}
