// Package validation turns rule failures into the field/message list
// returned to API clients.
package validation

import (
	"errors"
	"sort"
	"strings"

	ozzo "github.com/go-ozzo/ozzo-validation"
)

// Violation is one failed constraint on one input field.
type Violation struct {
	PropertyPath string `json:"propertyPath"`
	Message      string `json:"message"`
}

// Errors is returned by every Validate function of a request shape.
type Errors struct {
	Violations []Violation
}

func (e *Errors) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.PropertyPath+": "+v.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Field reports the message for a property, if any.
func (e *Errors) Field(path string) (string, bool) {
	for _, v := range e.Violations {
		if v.PropertyPath == path {
			return v.Message, true
		}
	}
	return "", false
}

// New builds a single-violation error.
func New(path, message string) *Errors {
	return &Errors{Violations: []Violation{{PropertyPath: path, Message: message}}}
}

// Merge combines violations, ignoring nil inputs. Returns nil when empty.
func Merge(errs ...*Errors) *Errors {
	out := &Errors{}
	for _, e := range errs {
		if e != nil {
			out.Violations = append(out.Violations, e.Violations...)
		}
	}
	if len(out.Violations) == 0 {
		return nil
	}
	return out
}

// FromRules converts the result of ozzo.ValidateStruct. Internal rule
// errors are passed through untouched.
func FromRules(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs ozzo.Errors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := &Errors{}
	flatten("", fieldErrs, out)
	if len(out.Violations) == 0 {
		return nil
	}
	sort.Slice(out.Violations, func(i, j int) bool {
		return out.Violations[i].PropertyPath < out.Violations[j].PropertyPath
	})
	return out
}

func flatten(prefix string, errs ozzo.Errors, out *Errors) {
	for field, fe := range errs {
		if fe == nil {
			continue
		}
		path := field
		if prefix != "" {
			path = prefix + "." + field
		}
		var nested ozzo.Errors
		if errors.As(fe, &nested) {
			flatten(path, nested, out)
			continue
		}
		out.Violations = append(out.Violations, Violation{PropertyPath: path, Message: fe.Error()})
	}
}
