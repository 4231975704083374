/*
Copyright 2024 The Kubeflow authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package schema

import (
	"fmt"

	"k8s.io/apimachinery/pkg/util/validation/field"
)

// SchemaErrorReason classifies a failure to load a schema document.
type SchemaErrorReason string

// Schema error reasons.
const (
	ReasonUnknownType         SchemaErrorReason = "UnknownType"
	ReasonUnresolvedReference SchemaErrorReason = "UnresolvedReference"
	ReasonCyclicReference     SchemaErrorReason = "CyclicReference"
	ReasonMalformedDocument   SchemaErrorReason = "MalformedDocument"
	ReasonNotLoaded           SchemaErrorReason = "NotLoaded"
)

// SchemaError reports a broken schema document. Pointer is the JSON pointer of
// the offending node, when one is known.
type SchemaError struct {
	Reason  SchemaErrorReason
	Pointer string
	Detail  string
}

// Sentinel schema errors for use with errors.Is.
var (
	ErrUnknownType         = &SchemaError{Reason: ReasonUnknownType}
	ErrUnresolvedReference = &SchemaError{Reason: ReasonUnresolvedReference}
	ErrCyclicReference     = &SchemaError{Reason: ReasonCyclicReference}
	ErrMalformedDocument   = &SchemaError{Reason: ReasonMalformedDocument}
	ErrNotLoaded           = &SchemaError{Reason: ReasonNotLoaded}
)

func (e *SchemaError) Error() string {
	msg := string(e.Reason)
	if e.Pointer != "" {
		msg += " at " + e.Pointer
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Is reports whether target is a SchemaError with the same reason.
func (e *SchemaError) Is(target error) bool {
	t, ok := target.(*SchemaError)
	return ok && t.Reason == e.Reason
}

func errNotLoaded() *SchemaError {
	return &SchemaError{Reason: ReasonNotLoaded, Detail: "no schema has been loaded"}
}

func newSchemaError(reason SchemaErrorReason, pointer string, format string, args ...interface{}) *SchemaError {
	return &SchemaError{Reason: reason, Pointer: pointer, Detail: fmt.Sprintf(format, args...)}
}

// ValidationErrorReason classifies why a document was rejected.
type ValidationErrorReason string

// Validation error reasons.
const (
	ReasonTypeMismatch          ValidationErrorReason = "TypeMismatch"
	ReasonMissingRequired       ValidationErrorReason = "MissingRequired"
	ReasonMalformedArrayElement ValidationErrorReason = "MalformedArrayElement"
	ReasonUnknownField          ValidationErrorReason = "UnknownField"
	ReasonValueOutOfRange       ValidationErrorReason = "ValueOutOfRange"
)

// ValidationError reports the first problem found in a document. Field is the
// path of the offending value, e.g. "env[2].value".
type ValidationError struct {
	Reason   ValidationErrorReason
	Field    string
	Expected Kind
	Got      string
	Value    interface{}
}

// Sentinel validation errors for use with errors.Is.
var (
	ErrTypeMismatch          = &ValidationError{Reason: ReasonTypeMismatch}
	ErrMissingRequired       = &ValidationError{Reason: ReasonMissingRequired}
	ErrMalformedArrayElement = &ValidationError{Reason: ReasonMalformedArrayElement}
	ErrUnknownField          = &ValidationError{Reason: ReasonUnknownField}
	ErrValueOutOfRange       = &ValidationError{Reason: ReasonValueOutOfRange}
)

func (e *ValidationError) Error() string {
	switch e.Reason {
	case ReasonTypeMismatch:
		return fmt.Sprintf("%s: %s: expected %s, got %s", e.Reason, e.Field, e.Expected, e.Got)
	case ReasonMissingRequired:
		return fmt.Sprintf("%s: %s: required field is missing", e.Reason, e.Field)
	case ReasonMalformedArrayElement:
		return fmt.Sprintf("%s: %s: array element must not be null", e.Reason, e.Field)
	case ReasonUnknownField:
		return fmt.Sprintf("%s: %s: field is not declared by the schema", e.Reason, e.Field)
	case ReasonValueOutOfRange:
		return fmt.Sprintf("%s: %s: %v does not fit the target field", e.Reason, e.Field, e.Value)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Field)
}

// Is reports whether target is a ValidationError with the same reason.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Reason == e.Reason
}

// FieldError converts e into the error type Kubernetes validators report.
func (e *ValidationError) FieldError() *field.Error {
	switch e.Reason {
	case ReasonTypeMismatch:
		return &field.Error{
			Type:     field.ErrorTypeTypeInvalid,
			Field:    e.Field,
			BadValue: e.Value,
			Detail:   fmt.Sprintf("expected %s, got %s", e.Expected, e.Got),
		}
	case ReasonMissingRequired:
		return &field.Error{Type: field.ErrorTypeRequired, Field: e.Field, BadValue: ""}
	case ReasonUnknownField:
		return &field.Error{Type: field.ErrorTypeNotSupported, Field: e.Field, BadValue: e.Value, Detail: "unknown field"}
	case ReasonValueOutOfRange:
		return &field.Error{Type: field.ErrorTypeInvalid, Field: e.Field, BadValue: e.Value, Detail: "value out of range"}
	default:
		return &field.Error{Type: field.ErrorTypeInvalid, Field: e.Field, BadValue: e.Value, Detail: "array element must not be null"}
	}
}

func typeMismatch(path *field.Path, expected Kind, value interface{}) *ValidationError {
	return &ValidationError{
		Reason:   ReasonTypeMismatch,
		Field:    path.String(),
		Expected: expected,
		Got:      kindOf(value),
		Value:    value,
	}
}

// OutOfRange reports an integer at path that passed validation but does not
// fit the field it is decoded into.
func OutOfRange(path *field.Path, value int64) *ValidationError {
	return &ValidationError{
		Reason:   ReasonValueOutOfRange,
		Field:    path.String(),
		Expected: KindInteger,
		Got:      string(KindInteger),
		Value:    value,
	}
}

func missingRequired(path *field.Path) *ValidationError {
	return &ValidationError{Reason: ReasonMissingRequired, Field: path.String()}
}
