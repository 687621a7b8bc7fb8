package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"fieldops-service/internal/repository"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrInvalidInput       = errors.New("invalid input")
	ErrConflict           = errors.New("conflict")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrPreconditionFailed = errors.New("precondition failed")
)

// TransitionError reports an operation refused because of the current status
// of a document. It matches ErrInvalidTransition.
type TransitionError struct {
	Entity  string
	Ref     string
	Action  string
	Current string
	Allowed []string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s %s cannot be %s: status is %s (must be %s)",
		e.Entity, e.Ref, e.Action, e.Current, strings.Join(e.Allowed, " or "))
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// PreconditionError reports a business rule that blocks an otherwise valid
// transition. Missing lists the unmet items, when there are any.
type PreconditionError struct {
	Rule    string
	Missing []string
}

func (e *PreconditionError) Error() string {
	if len(e.Missing) == 0 {
		return e.Rule
	}
	return fmt.Sprintf("%s: %s", e.Rule, strings.Join(e.Missing, ", "))
}

func (e *PreconditionError) Is(target error) bool {
	return target == ErrPreconditionFailed
}

type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// ValidationError lists rejected input fields. It matches ErrInvalidInput.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s failed %s", f.Field, f.Rule))
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

func invalidField(field, rule string) error {
	return &ValidationError{Fields: []FieldError{{Field: field, Rule: rule}}}
}

func notFound(entity string, id uuid.UUID) error {
	return fmt.Errorf("%s %s: %w", entity, id, ErrNotFound)
}

// translate maps repository errors onto service errors for entity id.
func translate(err error, entity string, id uuid.UUID) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return notFound(entity, id)
	case errors.Is(err, repository.ErrDuplicate):
		return fmt.Errorf("%s %s: %w", entity, id, ErrConflict)
	}
	return err
}

func transitionError[S ~string](entity, ref, action string, current S, allowed []S) error {
	names := make([]string, len(allowed))
	for i, s := range allowed {
		names[i] = string(s)
	}
	return &TransitionError{
		Entity:  entity,
		Ref:     ref,
		Action:  action,
		Current: string(current),
		Allowed: names,
	}
}

// requireStatus fails with a TransitionError unless current is one of allowed.
func requireStatus[S ~string](entity, ref, action string, current S, allowed ...S) error {
	for _, s := range allowed {
		if current == s {
			return nil
		}
	}
	return transitionError(entity, ref, action, current, allowed)
}

// sourcesOf returns the statuses from which next is reachable.
func sourcesOf[S ~string](all []S, next S, can func(from, to S) bool) []S {
	var out []S
	for _, s := range all {
		if can(s, next) {
			out = append(out, s)
		}
	}
	return out
}
