// Package validation holds the statically-defined payload schemas used by
// the business models.  Each schema is a named set of field rules built once
// at startup; rule tags are evaluated by go-playground/validator.  A schema
// load returns a cleaned, typed row or a field-keyed error list, never both.
package validation

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/qtc-soft/schedule-api/internal/entity"
)

// validate is shared by every schema; validator instances are safe for
// concurrent use.
var validate = validator.New()

// Rule describes one field: the type values are coerced to and the
// validator tag applied afterwards.
type Rule struct {
	Kind entity.Kind
	Tag  string
}

// FieldError reports one offending field in human-readable form.
type FieldError struct {
	Field  string
	Reason string
}

// Schema is a named mapping of field rules.  Create schemas omit id;
// update schemas require it.
type Schema struct {
	Name   string
	Fields map[string]Rule
}

// Load validates and coerces a loosely-typed payload.  Unknown keys are
// dropped.  Fields tagged required must be present; optional fields are
// validated only when supplied.
func (s Schema) Load(data entity.Row) (entity.Row, []FieldError) {
	clean := make(entity.Row, len(data))
	var errs []FieldError

	for name, rule := range s.Fields {
		raw, ok := data[name]
		if !ok || raw == nil {
			if hasRequired(rule.Tag) {
				errs = append(errs, FieldError{Field: name, Reason: "Missing data for required field"})
			}
			continue
		}
		v, err := coerce(raw, rule.Kind)
		if err != nil {
			errs = append(errs, FieldError{Field: name, Reason: err.Error()})
			continue
		}
		if rule.Tag != "" {
			if err := validate.Var(v, rule.Tag); err != nil {
				errs = append(errs, FieldError{Field: name, Reason: fmt.Sprintf("Not a valid %s value", name)})
				continue
			}
		}
		clean[name] = v
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return clean, nil
}

func hasRequired(tag string) bool {
	// tags are written with "required" first by convention
	return len(tag) >= 8 && tag[:8] == "required"
}

// coerce normalizes JSON-decoded values onto the column kind.
func coerce(v any, kind entity.Kind) (any, error) {
	switch kind {
	case entity.KindInt:
		if n, ok := v.(int64); ok {
			return n, nil
		}
		if n, ok := v.(int); ok {
			return int64(n), nil
		}
		if f, ok := v.(float64); ok && f == float64(int64(f)) {
			return int64(f), nil
		}
		if s, ok := v.(string); ok {
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return n, nil
			}
		}
		return nil, fmt.Errorf("Not a valid integer")
	case entity.KindFloat:
		switch n := v.(type) {
		case float64:
			return n, nil
		case int64:
			return float64(n), nil
		case int:
			return float64(n), nil
		}
		return nil, fmt.Errorf("Not a valid number")
	case entity.KindBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
		return nil, fmt.Errorf("Not a valid boolean")
	case entity.KindJSON:
		// free-form settings are persisted as their JSON text
		switch j := v.(type) {
		case string:
			return j, nil
		default:
			b, err := json.Marshal(j)
			if err != nil {
				return nil, fmt.Errorf("Not a valid object")
			}
			return string(b), nil
		}
	default:
		if s, ok := v.(string); ok {
			return s, nil
		}
		return nil, fmt.Errorf("Not a valid string")
	}
}
