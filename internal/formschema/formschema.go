// Package formschema derives validation rules and default values from a
// declarative list of form field descriptors.
package formschema

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/go-playground/validator/v10"
)

type FieldType string

const (
	Text        FieldType = "text"
	Textarea    FieldType = "textarea"
	Number      FieldType = "number"
	Date        FieldType = "date"
	Checkbox    FieldType = "checkbox"
	Select      FieldType = "select"
	Radio       FieldType = "radio"
	Combobox    FieldType = "combobox"
	Multiselect FieldType = "multiselect"
	Upload      FieldType = "upload"
)

const (
	TextMaxLen     = 100
	TextareaMaxLen = 500
	NumberMax      = 1000000
)

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type Field struct {
	Type         FieldType `json:"type"`
	Name         string    `json:"name"`
	Label        string    `json:"label"`
	Required     bool      `json:"required,omitempty"`
	ErrorMsg     string    `json:"error_msg,omitempty"`
	Disabled     bool      `json:"disabled,omitempty"`
	Hidden       bool      `json:"hidden,omitempty"`
	Options      []Option  `json:"options,omitempty"`
	DefaultValue any       `json:"default_value,omitempty"`
	AllowAddNew  bool      `json:"allow_add_new,omitempty"`
}

// FieldErrors maps a field name to the first problem found with its value.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e[name])
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

var validate = validator.New()

// rule checks one raw value. present is false when the key was not sent at
// all. keep is false when nothing should be written to the cleaned output.
type rule func(raw any, present bool) (value any, keep bool, msg string)

type Schema struct {
	fields []Field
	rules  map[string]rule
}

// Build compiles a schema from field descriptors. Hidden fields are left out.
func Build(fields []Field) *Schema {
	s := &Schema{rules: make(map[string]rule, len(fields))}
	for _, f := range fields {
		if f.Hidden {
			continue
		}
		s.fields = append(s.fields, f)
		s.rules[f.Name] = ruleFor(f)
	}
	return s
}

// Fields returns the visible fields in declaration order.
func (s *Schema) Fields() []Field { return s.fields }

// Validate checks values against the schema and returns the cleaned values:
// strings trimmed, numbers as float64, dates as time.Time, multiselects as
// []string. Keys without a field are dropped. The error is nil when every
// field passed.
func (s *Schema) Validate(values map[string]any) (map[string]any, FieldErrors) {
	out := make(map[string]any, len(s.fields))
	var errs FieldErrors

	for _, f := range s.fields {
		raw, present := values[f.Name]
		value, keep, msg := s.rules[f.Name](raw, present)
		if msg != "" {
			if errs == nil {
				errs = make(FieldErrors)
			}
			errs[f.Name] = msg
			continue
		}
		if keep {
			out[f.Name] = value
		}
	}
	return out, errs
}

// ValidatePartial is Validate restricted to the keys present in values, for
// updates that only send the fields that changed. An optional field sent as
// null is kept as a nil value so the update clears it.
func (s *Schema) ValidatePartial(values map[string]any) (map[string]any, FieldErrors) {
	out := make(map[string]any, len(values))
	var errs FieldErrors

	for _, f := range s.fields {
		raw, present := values[f.Name]
		if !present {
			continue
		}
		if raw == nil && !f.Required {
			out[f.Name] = nil
			continue
		}
		value, keep, msg := s.rules[f.Name](raw, present)
		if msg != "" {
			if errs == nil {
				errs = make(FieldErrors)
			}
			errs[f.Name] = msg
			continue
		}
		if keep {
			out[f.Name] = value
		}
	}
	return out, errs
}

func ruleFor(f Field) rule {
	switch f.Type {
	case Text:
		return stringRule(f, TextMaxLen)
	case Textarea:
		return stringRule(f, TextareaMaxLen)
	case Number:
		return numberRule(f)
	case Date:
		return dateRule(f)
	case Select, Combobox, Radio:
		return choiceRule(f, "must be selected")
	case Upload:
		return choiceRule(f, "is required")
	case Multiselect:
		return multiRule(f)
	case Checkbox:
		return checkboxRule(f)
	}
	return func(raw any, present bool) (any, bool, string) {
		return nil, false, fmt.Sprintf("%s has unsupported type %q", f.Label, f.Type)
	}
}

func (f Field) message(fallback string) string {
	if f.ErrorMsg != "" {
		return f.ErrorMsg
	}
	return f.Label + " " + fallback
}

func stringRule(f Field, maxLen int) rule {
	return func(raw any, present bool) (any, bool, string) {
		if raw == nil {
			if f.Required {
				return nil, false, f.message("cannot be empty")
			}
			return nil, false, ""
		}
		s, ok := raw.(string)
		if !ok {
			return nil, false, f.Label + " must be text"
		}
		s = strings.TrimSpace(s)
		if err := validate.Var(s, fmt.Sprintf("max=%d", maxLen)); err != nil {
			return nil, false, fmt.Sprintf("%s must be less than %d characters", f.Label, maxLen)
		}
		if f.Required {
			if err := validate.Var(s, "min=1"); err != nil {
				return nil, false, f.message("cannot be empty")
			}
		}
		return s, true, ""
	}
}

func numberRule(f Field) rule {
	return func(raw any, present bool) (any, bool, string) {
		if raw == nil || raw == "" {
			if f.Required {
				return nil, false, f.message("is required")
			}
			return nil, false, ""
		}
		n, ok := toFloat(raw)
		if !ok {
			return nil, false, f.Label + " must be a number"
		}
		if !f.Required {
			return n, true, ""
		}
		if err := validate.Var(n, fmt.Sprintf("min=0,max=%d", NumberMax)); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) && verrs[0].Tag() == "max" {
				return nil, false, f.Label + " is too large"
			}
			return nil, false, f.Label + " must be positive"
		}
		return n, true, ""
	}
}

func dateRule(f Field) rule {
	return func(raw any, present bool) (any, bool, string) {
		if raw == nil || raw == "" {
			if f.Required {
				return nil, false, f.message("is required")
			}
			return nil, false, ""
		}
		switch v := raw.(type) {
		case time.Time:
			return v, true, ""
		case string:
			t, err := dateparse.ParseAny(strings.TrimSpace(v))
			if err != nil {
				return nil, false, "Please select a valid date"
			}
			return t, true, ""
		}
		return nil, false, "Please select a valid date"
	}
}

func choiceRule(f Field, fallback string) rule {
	return func(raw any, present bool) (any, bool, string) {
		s, ok := toString(raw)
		if raw != nil && !ok {
			return nil, false, f.Label + " must be text"
		}
		if f.Required {
			if err := validate.Var(s, "required"); err != nil {
				return nil, false, f.message(fallback)
			}
		}
		if s == "" {
			return nil, false, ""
		}
		return s, true, ""
	}
}

func multiRule(f Field) rule {
	return func(raw any, present bool) (any, bool, string) {
		var list []string
		switch v := raw.(type) {
		case nil:
		case []string:
			list = v
		case []any:
			list = make([]string, 0, len(v))
			for _, item := range v {
				s, ok := toString(item)
				if !ok {
					return nil, false, f.Label + " must be a list of values"
				}
				list = append(list, s)
			}
		default:
			return nil, false, f.Label + " must be a list of values"
		}
		if f.Required {
			if err := validate.Var(list, "min=1"); err != nil {
				return nil, false, f.message("must have at least one selection")
			}
		}
		if raw == nil {
			return nil, false, ""
		}
		return list, true, ""
	}
}

func checkboxRule(f Field) rule {
	return func(raw any, present bool) (any, bool, string) {
		if raw == nil {
			return nil, false, ""
		}
		b, ok := raw.(bool)
		if !ok {
			return nil, false, f.Label + " must be true or false"
		}
		return b, true, ""
	}
}

// Defaults returns the initial form values. A value in initial wins over the
// field's DefaultValue, which wins over the type's zero value.
func Defaults(fields []Field, initial map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		if f.Hidden {
			continue
		}
		if v, ok := initial[f.Name]; ok && v != nil {
			out[f.Name] = v
			continue
		}
		if f.DefaultValue != nil {
			out[f.Name] = f.DefaultValue
			continue
		}
		switch f.Type {
		case Text, Textarea, Upload:
			out[f.Name] = ""
		case Select, Radio, Combobox:
			if len(f.Options) > 0 {
				out[f.Name] = f.Options[0].Value
			} else {
				out[f.Name] = ""
			}
		case Multiselect:
			out[f.Name] = []string{}
		case Number:
			out[f.Name] = 0
		case Date:
			out[f.Name] = nil
		case Checkbox:
			out[f.Name] = false
		}
	}
	return out
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	rv := reflect.ValueOf(v)
	switch {
	case rv.CanInt():
		return float64(rv.Int()), true
	case rv.CanUint():
		return float64(rv.Uint()), true
	}
	return 0, false
}

// toString accepts strings and numbers; option values such as record IDs
// often arrive as JSON numbers.
func toString(v any) (string, bool) {
	switch s := v.(type) {
	case nil:
		return "", true
	case string:
		return strings.TrimSpace(s), true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(s), 'f', -1, 32), true
	case json.Number:
		return s.String(), true
	}
	rv := reflect.ValueOf(v)
	switch {
	case rv.CanInt():
		return strconv.FormatInt(rv.Int(), 10), true
	case rv.CanUint():
		return strconv.FormatUint(rv.Uint(), 10), true
	}
	return "", false
}
