// Package types holds the shared data structures (models) used across
// the application. Handlers, storage backends and utils all import types
// without depending on each other.
//
// It also owns the store schema: the rules every backend checks before
// writing a record. Handlers never validate input themselves.
package types

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Student represents an aluno record.
//
// Struct tags:
//
//  1. json:"..."     : wire names, kept in Portuguese to match the API
//     contract ("nome", not "name").
//  2. validate:"..." : the store schema, checked on insert.
type Student struct {
	ID    string `json:"id"`
	Name  string `json:"nome"  validate:"required"`
	Email string `json:"email" validate:"required,email"`
	CPF   string `json:"cpf"   validate:"required"`
}

// StudentPatch is the input of a partial update. A nil field is left
// untouched by the store; a non-nil field replaces the stored value and
// must satisfy the same schema as on insert.
type StudentPatch struct {
	Name  *string `json:"nome"  validate:"omitnil,min=1"`
	Email *string `json:"email" validate:"omitnil,email"`
	CPF   *string `json:"cpf"   validate:"omitnil,min=1"`
}

// IsEmpty reports whether the patch carries no field at all.
func (p StudentPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.CPF == nil
}

// StudentFilter selects records for the filter operation. Empty fields
// add no constraint, so the zero value matches every record.
//
// Name and Email match as case-insensitive literal substrings; CPF must
// match exactly.
type StudentFilter struct {
	Name  string
	Email string
	CPF   string
}

// Matches reports whether s satisfies f. It is the reference semantics
// the database-side filters of every backend must agree with.
func (f StudentFilter) Matches(s Student) bool {
	if f.Name != "" && !containsFold(s.Name, f.Name) {
		return false
	}
	if f.Email != "" && !containsFold(s.Email, f.Email) {
		return false
	}
	if f.CPF != "" && s.CPF != f.CPF {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// validate is safe for concurrent use and caches struct metadata, so a
// single instance serves the whole process.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON name ("nome") instead of the Go name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks s against the store schema.
func (s Student) Validate() error {
	return schemaError("aluno", validate.Struct(s))
}

// Validate checks the fields present in p against the store schema.
func (p StudentPatch) Validate() error {
	return schemaError("aluno", validate.Struct(p))
}

// schemaError turns validator output into a single readable error, e.g.
//
//	aluno validation failed: field nome is required, field email must be a valid email address
func schemaError(model string, err error) error {
	if err == nil {
		return nil
	}

	var validateErrs validator.ValidationErrors
	if !errors.As(err, &validateErrs) {
		return err
	}

	msgs := make([]string, 0, len(validateErrs))
	for _, e := range validateErrs {
		switch e.ActualTag() {
		case "required", "min":
			msgs = append(msgs, fmt.Sprintf("field %s is required", e.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("field %s must be a valid email address", e.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("field %s is invalid", e.Field()))
		}
	}

	return fmt.Errorf("%s validation failed: %s", model, strings.Join(msgs, ", "))
}
