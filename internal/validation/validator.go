// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared process-wide. It reports field names
// by their JSON tag and registers two domain tags:
//
//   - releaseyear: an int between 1888 and 2100
//   - sentiment: positive, neutral or negative
//
// Example:
//
//	type CreateReviewRequest struct {
//	    MovieID string  `json:"movieId" validate:"required"`
//	    Rating  float64 `json:"rating" validate:"gte=0,lte=10"`
//	}
//
//	if errs := validation.ValidateStruct(&req); errs != nil {
//	    respondError(w, http.StatusBadRequest, validation.Code, errs.Error(), nil)
//	    return
//	}
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/marquee/internal/recommend"
)

// Release year bounds for the releaseyear tag.
const (
	MinReleaseYear = 1888
	MaxReleaseYear = 2100
)

// Code is the API error code for failed request validation.
const Code = "VALIDATION_ERROR"

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// GetValidator returns the shared validator.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonFieldName)
		mustRegister(validate, "releaseyear", validateReleaseYear)
		mustRegister(validate, "sentiment", validateSentiment)
	})
	return validate
}

// FieldError describes one failed rule. Field uses the JSON name, with an
// index suffix for slice elements ("genres[1]").
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

func (e FieldError) Error() string { return e.Message }

// Errors is every rule a request failed, in struct field order.
type Errors []FieldError

func (errs Errors) Error() string {
	if len(errs) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// Details returns the error details for the API envelope. A single failure is
// flattened; several are listed under "fields".
func (errs Errors) Details() map[string]interface{} {
	if len(errs) == 1 {
		d := map[string]interface{}{"field": errs[0].Field, "rule": errs[0].Rule}
		if errs[0].Param != "" {
			d["param"] = errs[0].Param
		}
		return d
	}
	return map[string]interface{}{"fields": []FieldError(errs)}
}

// ValidateStruct validates s. It returns nil when s is valid.
func ValidateStruct(s interface{}) Errors {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return Errors{{Field: "request", Rule: "invalid", Message: err.Error()}}
	}

	out := make(Errors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Param:   fe.Param(),
			Message: describe(fe),
		})
	}
	return out
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %s: %v", tag, err))
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return fld.Name
	default:
		return name
	}
}

func validateReleaseYear(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Int, reflect.Int32, reflect.Int64:
		year := fl.Field().Int()
		return year >= MinReleaseYear && year <= MaxReleaseYear
	default:
		return false
	}
}

func validateSentiment(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	return recommend.Label(fl.Field().String()).Valid()
}

// describe renders a human-readable message for fe.
func describe(fe validator.FieldError) string {
	field, param := fe.Field(), fe.Param()

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "url":
		return field + " must be a valid URL"
	case "releaseyear":
		return fmt.Sprintf("%s must be a year between %d and %d", field, MinReleaseYear, MaxReleaseYear)
	case "sentiment":
		return field + " must be positive, neutral or negative"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, param)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "lt":
		return fmt.Sprintf("%s must be less than %s", field, param)
	case "min":
		return bound(fe, "at least")
	case "max":
		return bound(fe, "at most")
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// bound phrases min/max as a length for strings and collections and as a
// value otherwise.
func bound(fe validator.FieldError, qualifier string) string {
	switch fe.Kind() {
	case reflect.String:
		return fmt.Sprintf("%s must have %s %s characters", fe.Field(), qualifier, fe.Param())
	case reflect.Slice, reflect.Map, reflect.Array:
		return fmt.Sprintf("%s must have %s %s items", fe.Field(), qualifier, fe.Param())
	default:
		return fmt.Sprintf("%s must be %s %s", fe.Field(), qualifier, fe.Param())
	}
}
