package validation

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

const (
	LocationParams = "params"
	LocationBody   = "body"
)

var numericPattern = regexp.MustCompile(`^[+-]?([0-9]*[.])?[0-9]+$`)

// FieldError describes one failed rule. Value is omitted when the field was
// absent from the request.
type FieldError struct {
	Type     string `json:"type"`
	Value    any    `json:"value,omitempty"`
	Msg      string `json:"msg"`
	Path     string `json:"path"`
	Location string `json:"location"`
}

type ValidationErrorResponse struct {
	Errors []FieldError `json:"errors"`
}

// Check reports whether a field value satisfies a rule. present is false when
// the field is missing from the request entirely.
type Check func(value any, present bool) bool

type Rule struct {
	Location string
	Field    string
	Msg      string
	Check    Check
}

// Apply evaluates the rule against the input and returns nil on success.
func (r Rule) Apply(in *Input) *FieldError {
	value, present := in.lookup(r.Location, r.Field)
	if r.Check(value, present) {
		return nil
	}

	fe := &FieldError{
		Type:     "field",
		Msg:      r.Msg,
		Path:     r.Field,
		Location: r.Location,
	}
	if present {
		fe.Value = value
	}
	return fe
}

var (
	IDIsInt = Rule{
		Location: LocationParams,
		Field:    "id",
		Msg:      "Invalid ID",
		Check:    isInt,
	}

	NameNotEmpty = Rule{
		Location: LocationBody,
		Field:    "name",
		Msg:      "Name can't be empty",
		Check:    isNonBlankString,
	}

	PriceIsNumeric = Rule{
		Location: LocationBody,
		Field:    "price",
		Msg:      "Price must be a number",
		Check:    isNumeric,
	}

	PriceNotEmpty = Rule{
		Location: LocationBody,
		Field:    "price",
		Msg:      "Price can't be empty",
		Check:    isNotEmpty,
	}

	PriceGreaterThanZero = Rule{
		Location: LocationBody,
		Field:    "price",
		Msg:      "Price must be greater than 0",
		Check:    isPositive,
	}

	AvailabilityIsBoolean = Rule{
		Location: LocationBody,
		Field:    "availability",
		Msg:      "Availability must be a boolean",
		Check:    isBool,
	}
)

// Rule sets per route.
var (
	IDRules     = []Rule{IDIsInt}
	CreateRules = []Rule{NameNotEmpty, PriceIsNumeric, PriceNotEmpty, PriceGreaterThanZero}
	UpdateRules = []Rule{IDIsInt, NameNotEmpty, PriceIsNumeric, PriceNotEmpty, PriceGreaterThanZero, AvailabilityIsBoolean}
)

func isInt(value any, present bool) bool {
	s, ok := value.(string)
	if !present || !ok {
		return false
	}
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

func isNonBlankString(value any, present bool) bool {
	s, ok := value.(string)
	if !present || !ok {
		return false
	}
	return strings.TrimSpace(s) != ""
}

func isNumeric(value any, present bool) bool {
	if !present {
		return false
	}
	switch v := value.(type) {
	case json.Number:
		return true
	case string:
		return numericPattern.MatchString(v)
	default:
		return false
	}
}

func isNotEmpty(value any, present bool) bool {
	if !present || value == nil {
		return false
	}
	if s, ok := value.(string); ok {
		return s != ""
	}
	return true
}

func isPositive(value any, present bool) bool {
	if !present {
		return false
	}
	f, ok := toFloat(value)
	return ok && f > 0
}

func isBool(value any, present bool) bool {
	_, ok := value.(bool)
	return present && ok
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
