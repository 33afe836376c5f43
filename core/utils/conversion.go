package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidNumber is returned when a present value cannot be read as a number.
var ErrInvalidNumber = errors.New("invalid number")

// Range of int as float64. The upper bound is exclusive.
const (
	minIntFloat = float64(math.MinInt)
	maxIntFloat = -float64(math.MinInt)
)

// ToString converts various types to string.
// A nil value becomes the empty string.
func ToString(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case json.Number:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// NormalizeText trims the value and collapses every run of whitespace into a single space.
func NormalizeText(val any) string {
	return strings.Join(strings.Fields(ToString(val)), " ")
}

// isAbsent reports whether val carries no value: nil, "" or the literal "null".
func isAbsent(val any) bool {
	switch v := val.(type) {
	case nil:
		return true
	case string:
		return v == "" || v == "null"
	case []byte:
		return len(v) == 0 || string(v) == "null"
	default:
		return false
	}
}

// ToInt reads val as a number and truncates it toward zero, so "3.0" and "3.9" both yield 3.
// Absent values return nil.
func ToInt(val any) (*int, error) {
	if isAbsent(val) {
		return nil, nil
	}

	var f float64
	switch v := val.(type) {
	case int:
		return &v, nil
	case int64:
		i := int(v)
		return &i, nil
	case int32:
		i := int(v)
		return &i, nil
	case float64:
		f = v
	case float32:
		f = float64(v)
	default:
		s := strings.TrimSpace(ToString(v))
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
		}
		f = parsed
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNumber, f)
	}

	f = math.Trunc(f)
	if f < minIntFloat || f >= maxIntFloat {
		return nil, fmt.Errorf("%w: %v out of range", ErrInvalidNumber, f)
	}

	i := int(f)
	return &i, nil
}

// ToFloat reads val as a decimal. A comma is accepted as the decimal separator.
// Absent values return an invalid NullDecimal.
func ToFloat(val any) (decimal.NullDecimal, error) {
	if isAbsent(val) {
		return decimal.NullDecimal{}, nil
	}

	switch v := val.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.NullDecimal{}, fmt.Errorf("%w: %v", ErrInvalidNumber, v)
		}
		return decimal.NewNullDecimal(decimal.NewFromFloat(v)), nil
	case int:
		return decimal.NewNullDecimal(decimal.NewFromInt(int64(v))), nil
	case int64:
		return decimal.NewNullDecimal(decimal.NewFromInt(v)), nil
	}

	s := strings.TrimSpace(strings.ReplaceAll(ToString(val), ",", "."))
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	return decimal.NewNullDecimal(d), nil
}
