// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

/*
requests.go - Request Body Validation

Request structs carry go-playground/validator v10 tags and are checked
after JSON decoding, before any media server call. Conditional fields use
required_if: seek needs position_seconds, set_volume needs volume.
Validation failures map to a VALIDATION_ERROR response with per-field
details keyed by the JSON field name.
*/

package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// playerCommandRequest is the body for POST /players/{id}/command.
type playerCommandRequest struct {
	Command string `json:"command" validate:"required,oneof=play_pause stop next previous seek set_volume mute unmute"`

	// PositionSeconds is required for seek.
	PositionSeconds *int64 `json:"position_seconds,omitempty" validate:"required_if=Command seek,omitempty,min=0"`

	// Volume is required for set_volume; normalized 0.0-1.0.
	Volume *float64 `json:"volume,omitempty" validate:"required_if=Command set_volume,omitempty,min=0,max=1"`
}

// messageRequest is the body for POST /players/{id}/message and
// POST /broadcast.
type messageRequest struct {
	Text      string `json:"text" validate:"required,max=512"`
	Header    string `json:"header,omitempty" validate:"omitempty,max=128"`
	TimeoutMs int    `json:"timeout_ms,omitempty" validate:"omitempty,min=0,max=60000"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names in validation errors, not Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// validateRequest checks a request struct against its validate tags.
// Returns per-field problem descriptions keyed by JSON field name, or nil
// when the request is valid.
func validateRequest(req interface{}) map[string]string {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	details := make(map[string]string)
	if !errors.As(err, &verrs) {
		details["request"] = err.Error()
		return details
	}

	for _, fe := range verrs {
		details[fe.Field()] = fieldErrorMessage(fe)
	}
	return details
}

func fieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_if":
		return "is required for this command"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
