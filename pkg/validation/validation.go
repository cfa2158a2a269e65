// Package validation decodes untyped JSON payloads into typed requests and reports
// every schema violation in a single error.
//
// A JSON schema is derived from the target struct and checked with
// santhosh-tekuri/jsonschema before anything is decoded. Struct tags drive it:
//
//	json:"name"          wire name of the field
//	schema:"required"    the key must be present and non-null
//	default:"value"      value applied when the key is absent or null
//	validate:"..."       go-playground/validator constraints checked after decoding
//
// Undeclared keys are rejected. Nested struct fields (and pointers to structs)
// report dotted locations such as transaction_data.amount.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	s "regscope/pkg/string"
)

// Issue types reported in FieldIssue.Type.
const (
	IssueMissing    = "value_error.missing"
	IssueExtra      = "value_error.extra"
	IssueJSON       = "value_error.jsondecode"
	IssueConstraint = "value_error.constraint"
)

// FieldIssue describes a single schema violation.
type FieldIssue struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// ValidationError enumerates every field that failed decoding or validation.
type ValidationError struct {
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", strings.Join(issue.Loc, "."), issue.Msg))
	}
	return fmt.Sprintf("%d validation error(s): %s", len(e.Issues), strings.Join(parts, "; "))
}

// AsValidationError unwraps err into a *ValidationError when possible.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

var defaultValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	return v
}

// jsonName resolves the wire name of a struct field, falling back to snake_case.
func jsonName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return s.ToSnakeCase(field.Name)
	}
	return name
}

func constraintIssues(req any) []FieldIssue {
	err := defaultValidator.Struct(req)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return []FieldIssue{{Loc: []string{"body"}, Msg: "invalid request body", Type: IssueConstraint}}
	}
	issues := make([]FieldIssue, 0, len(validationErrs))
	for _, fe := range validationErrs {
		issues = append(issues, FieldIssue{
			Loc:  namespaceLoc(fe.Namespace()),
			Msg:  constraintMessage(fe),
			Type: "value_error." + fe.ActualTag(),
		})
	}
	return issues
}

// namespaceLoc replaces the root struct name of a validator namespace with "body".
func namespaceLoc(ns string) []string {
	parts := strings.Split(ns, ".")
	parts[0] = "body"
	return parts
}

func constraintMessage(fe validator.FieldError) string {
	unit := "characters"
	if k := fe.Kind(); k == reflect.Slice || k == reflect.Array || k == reflect.Map {
		unit = "items"
	}
	switch fe.ActualTag() {
	case "max":
		return fmt.Sprintf("ensure this value has at most %s %s", fe.Param(), unit)
	case "min":
		return fmt.Sprintf("ensure this value has at least %s %s", fe.Param(), unit)
	case "oneof":
		return fmt.Sprintf("value must be one of [%s]", fe.Param())
	default:
		return "value is invalid"
	}
}
