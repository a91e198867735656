// Package validate provides struct-tag validation for user-entered payloads.
//
// Supported rules (comma-separated in the `validate` tag):
//
//	required            field must not be zero/empty
//	nullable            if empty, skip all remaining rules for this field
//	numeric             any number
//	min=N               string: min char length | number: min value
//	max=N               string: max char length | number: max value
//	in=a,b,c            value must be one of the listed items
//
// Example:
//
//	type Input struct {
//	    Name  string  `json:"name"  validate:"required,min=2,max=100"`
//	    Price float64 `json:"price" validate:"min=0"`
//	    Mode  string  `json:"mode"  validate:"required,in=cash,card,upi"`
//	}
package validate

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Errors maps field names to their first failing rule's message.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, e[f])
	}
	return strings.Join(parts, "; ")
}

// Struct validates all exported fields of v that carry a `validate` tag.
// It returns nil when everything passes, or an Errors value.
func Struct(v interface{}) error {
	errs := Errors{}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" {
			continue
		}

		name := jsonFieldName(field)
		value := rv.Field(i)
		rules := strings.Split(tag, ",")

		if hasRule(rules, "nullable") && isEmpty(value) {
			continue
		}

		for _, rule := range rules {
			if rule == "nullable" {
				continue
			}
			if msg := applyRule(rule, name, value); msg != "" {
				errs[name] = msg
				break // first failing rule per field
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func applyRule(rule, field string, v reflect.Value) string {
	key, param, _ := strings.Cut(rule, "=")

	switch key {
	case "required":
		if isEmpty(v) {
			return fmt.Sprintf("The %s field is required.", field)
		}
	case "numeric":
		if _, ok := numericValue(v); !ok {
			return fmt.Sprintf("The %s field must be a number.", field)
		}
	case "min":
		limit, _ := strconv.ParseFloat(param, 64)
		if n, ok := numericValue(v); ok {
			if n < limit {
				return fmt.Sprintf("The %s field must be at least %s.", field, param)
			}
		} else if v.Kind() == reflect.String && float64(len(v.String())) < limit {
			return fmt.Sprintf("The %s field must be at least %s characters.", field, param)
		}
	case "max":
		limit, _ := strconv.ParseFloat(param, 64)
		if n, ok := numericValue(v); ok {
			if n > limit {
				return fmt.Sprintf("The %s field may not be greater than %s.", field, param)
			}
		} else if v.Kind() == reflect.String && float64(len(v.String())) > limit {
			return fmt.Sprintf("The %s field may not be greater than %s characters.", field, param)
		}
	case "in":
		raw := fmt.Sprintf("%v", v.Interface())
		for _, opt := range strings.Split(param, ",") {
			if raw == opt {
				return ""
			}
		}
		return fmt.Sprintf("The selected %s is invalid.", field)
	}
	return ""
}

func numericValue(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	}
	return 0, false
}

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	default:
		return v.IsZero()
	}
}

func hasRule(rules []string, name string) bool {
	for _, r := range rules {
		if r == name {
			return true
		}
	}
	return false
}

func jsonFieldName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "" || tag == "-" {
		return f.Name
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return f.Name
	}
	return name
}
