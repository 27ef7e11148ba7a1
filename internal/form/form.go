// Package form interprets an event's registration form schema: it validates
// raw submissions against the ordered field list and checks schema integrity
// when an event is saved.
package form

import (
	"fmt"
	"regexp"
	"strings"

	"eventdesk/internal/domain"
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Validate checks a raw submission against the form schema and returns the
// typed values to persist, keyed by field name. Keys not present in the
// schema are dropped. Optional fields with empty or absent values are
// omitted from the result. An empty schema accepts any submission.
func Validate(fields []domain.FormField, submission map[string]any) (map[string]any, *domain.ValidationError) {
	values := make(map[string]any, len(fields))
	var errs []domain.FieldError

	for _, f := range fields {
		raw, present := submission[f.Name]
		if raw == nil {
			// JSON null is the same as an absent key.
			present = false
		}

		switch f.Type {
		case domain.FieldCheckbox:
			if !present {
				if f.Required {
					errs = append(errs, missingRequired(f))
				}
				continue
			}
			checked := truthy(raw)
			if f.Required && !checked {
				errs = append(errs, missingRequired(f))
				continue
			}
			values[f.Name] = checked

		case domain.FieldRadio:
			s, ok := raw.(string)
			if !present || (ok && strings.TrimSpace(s) == "") {
				if f.Required {
					errs = append(errs, missingRequired(f))
				}
				continue
			}
			if !ok || !contains(f.Options, s) {
				errs = append(errs, invalidOption(f))
				continue
			}
			values[f.Name] = s

		case domain.FieldMultipleChoice:
			selected, ok := stringList(raw)
			if !present || (ok && len(selected) == 0) {
				if f.Required {
					errs = append(errs, missingRequired(f))
				}
				continue
			}
			if !ok {
				errs = append(errs, invalidOption(f))
				continue
			}
			valid := true
			for _, s := range selected {
				if !contains(f.Options, s) {
					valid = false
					break
				}
			}
			if !valid {
				errs = append(errs, invalidOption(f))
				continue
			}
			values[f.Name] = selected

		default: // text, email, tel, textarea
			s, ok := raw.(string)
			if !present || (ok && strings.TrimSpace(s) == "") {
				if f.Required {
					errs = append(errs, missingRequired(f))
				}
				continue
			}
			if !ok {
				errs = append(errs, domain.FieldError{
					Field:   f.Name,
					Code:    domain.FieldErrInvalidFormat,
					Message: fmt.Sprintf("%s must be text", f.Label),
				})
				continue
			}
			s = strings.TrimSpace(s)
			// Email format applies whenever a value is present, required or not.
			if f.Type == domain.FieldEmail && !emailRegexp.MatchString(s) {
				errs = append(errs, domain.FieldError{
					Field:   f.Name,
					Code:    domain.FieldErrInvalidFormat,
					Message: fmt.Sprintf("%s must be a valid email address", f.Label),
				})
				continue
			}
			values[f.Name] = s
		}
	}

	if len(errs) > 0 {
		return nil, &domain.ValidationError{Fields: errs}
	}
	return values, nil
}

// ValidateSchema checks the integrity of a form schema before it is saved:
// non-empty unique names, non-empty labels, known field types, and non-empty
// options for option-based types.
func ValidateSchema(fields []domain.FormField) *domain.ValidationError {
	var errs []domain.FieldError
	seen := make(map[string]struct{}, len(fields))

	for i, f := range fields {
		name := f.Name
		if name == "" {
			name = fmt.Sprintf("field[%d]", i)
		}
		if strings.TrimSpace(f.Name) == "" {
			errs = append(errs, schemaError(name, "field name is required"))
		} else if _, dup := seen[f.Name]; dup {
			errs = append(errs, schemaError(name, fmt.Sprintf("duplicate field name %q", f.Name)))
		} else {
			seen[f.Name] = struct{}{}
		}
		if strings.TrimSpace(f.Label) == "" {
			errs = append(errs, schemaError(name, "field label is required"))
		}
		if !domain.ValidFieldType(f.Type) {
			errs = append(errs, schemaError(name, fmt.Sprintf("unknown field type %q", f.Type)))
			continue
		}
		if f.Type.HasOptions() {
			if len(f.Options) == 0 {
				errs = append(errs, schemaError(name, fmt.Sprintf("%s fields need at least one option", f.Type)))
				continue
			}
			for _, o := range f.Options {
				if strings.TrimSpace(o) == "" {
					errs = append(errs, schemaError(name, "options must be non-empty"))
					break
				}
			}
		}
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Fields: errs}
	}
	return nil
}

// FirstEmail returns the value of the first email-typed field answered in
// values, or "" when the schema collected no email.
func FirstEmail(fields []domain.FormField, values map[string]any) string {
	for _, f := range fields {
		if f.Type != domain.FieldEmail {
			continue
		}
		if s, ok := values[f.Name].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// FirstText returns the answer of the field named "name" when it is a
// non-empty string, falling back to the first answered text field. Used to
// address the attendee in confirmation emails.
func FirstText(fields []domain.FormField, values map[string]any) string {
	if s, ok := values["name"].(string); ok && s != "" {
		return s
	}
	for _, f := range fields {
		if f.Type != domain.FieldText {
			continue
		}
		if s, ok := values[f.Name].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// truthy interprets the checkbox encodings sent by HTML forms and JSON
// clients: bool true, "true", "on", and "1" all mean checked.
func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "on", "1":
			return true
		}
	}
	return false
}

// stringList accepts a single string or a list of strings ([]string or
// []any of strings). ok is false for any other shape.
func stringList(v any) ([]string, bool) {
	switch t := v.(type) {
	case string:
		if strings.TrimSpace(t) == "" {
			return nil, true
		}
		return []string{t}, true
	case []string:
		return t, true
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

func contains(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}

func missingRequired(f domain.FormField) domain.FieldError {
	return domain.FieldError{
		Field:   f.Name,
		Code:    domain.FieldErrMissingRequired,
		Message: fmt.Sprintf("%s is required", f.Label),
	}
}

func invalidOption(f domain.FormField) domain.FieldError {
	return domain.FieldError{
		Field:   f.Name,
		Code:    domain.FieldErrInvalidOption,
		Message: fmt.Sprintf("%s must be one of the listed options", f.Label),
	}
}

func schemaError(field, message string) domain.FieldError {
	return domain.FieldError{
		Field:   field,
		Code:    domain.FieldErrInvalidSchema,
		Message: message,
	}
}
