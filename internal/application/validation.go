package application

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

func validateName(vErr *ValidationError, field, value string) {
	trimmed := strings.TrimSpace(value)
	switch {
	case trimmed == "":
		vErr.add(field, field+" is required")
	case utf8.RuneCountInString(trimmed) > maxNameLength:
		vErr.add(field, fmt.Sprintf("%s must be at most %d characters", field, maxNameLength))
	}
}

func validatePlanInput(input CreatePlanInput) *ValidationError {
	vErr := &ValidationError{}
	validateName(vErr, "name", input.Name)
	if input.Description != nil && utf8.RuneCountInString(strings.TrimSpace(*input.Description)) > maxDescriptionLength {
		vErr.add("description", fmt.Sprintf("description must be at most %d characters", maxDescriptionLength))
	}
	return vErr
}

func validateSlug(vErr *ValidationError, urlID string) {
	if urlID == "" {
		vErr.add("url_id", "url_id is required")
	} else if utf8.RuneCountInString(urlID) > maxNameLength {
		vErr.add("url_id", fmt.Sprintf("url_id must be at most %d characters", maxNameLength))
	}
}

func normalizeOptionalString(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
