// Package services contains server-side business logic: credential
// verification, user-directory administration, and the session lifecycle.
package services

import "github.com/dmitrijs2005/poseidon/internal/common"

// ValidationError aggregates field-level validation messages so a form can
// display every problem at once. It wraps common.ErrValidation for errors.Is
// matching.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	return common.ErrValidation.Error()
}

func (e *ValidationError) Unwrap() error {
	return common.ErrValidation
}

func (e *ValidationError) add(field, reason string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], reason)
}

func (e *ValidationError) empty() bool {
	return len(e.Fields) == 0
}
