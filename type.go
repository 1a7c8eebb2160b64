// File: lixenwraith/config/type.go
package config

import (
	"fmt"

	"github.com/lixenwraith/config/hocon"
	"github.com/shopspring/decimal"
)

// lookup reads path and converts it with as. An absent path yields the first
// default when one is given and ErrPathNotFound otherwise; a present value that
// as rejects yields ErrTypeMismatch.
func lookup[T any](c *Config, path, kind string, as func(any) (T, bool), def []T) (T, error) {
	var zero T

	val, found := c.Get(path)
	if !found {
		if len(def) > 0 {
			return def[0], nil
		}
		return zero, fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}

	result, ok := as(val)
	if !ok {
		return zero, fmt.Errorf("%w: path %s holds %s, not %s", ErrTypeMismatch, path, describe(val), kind)
	}
	return result, nil
}

// listOf converts every element of a list value with as.
func listOf[T any](as func(any) (T, bool)) func(any) ([]T, bool) {
	return func(val any) ([]T, bool) {
		items, ok := val.([]any)
		if !ok {
			return nil, false
		}
		result := make([]T, 0, len(items))
		for _, item := range items {
			v, ok := as(item)
			if !ok {
				return nil, false
			}
			result = append(result, v)
		}
		return result, true
	}
}

func describe(val any) string {
	switch val.(type) {
	case hocon.Node:
		return "an object"
	case []any:
		return "a list"
	default:
		return fmt.Sprintf("%T", val)
	}
}

func asString(val any) (string, bool) {
	s, ok := val.(string)
	return s, ok
}

func asInt64(val any) (int64, bool) {
	i, ok := val.(int64)
	return i, ok
}

// asDecimal accepts decimals and widens integers.
func asDecimal(val any) (decimal.Decimal, bool) {
	switch v := val.(type) {
	case decimal.Decimal:
		return v, true
	case int64:
		return decimal.NewFromInt(v), true
	}
	return decimal.Decimal{}, false
}

func asFloat64(val any) (float64, bool) {
	d, ok := asDecimal(val)
	if !ok {
		return 0, false
	}
	return d.InexactFloat64(), true
}

func asBool(val any) (bool, bool) {
	b, ok := val.(bool)
	return b, ok
}

func asValue(val any) (any, bool) {
	return val, !hocon.IsNode(val)
}

func asList(val any) ([]any, bool) {
	items, ok := val.([]any)
	return items, ok
}

// String retrieves a string value. Quoted and bare document strings are both strings.
func (c *Config) String(path string, def ...string) (string, error) {
	return lookup(c, path, "string", asString, def)
}

// Int64 retrieves an integer value.
func (c *Config) Int64(path string, def ...int64) (int64, error) {
	return lookup(c, path, "int64", asInt64, def)
}

// Decimal retrieves an exact decimal value. Integers are widened.
func (c *Config) Decimal(path string, def ...decimal.Decimal) (decimal.Decimal, error) {
	return lookup(c, path, "decimal", asDecimal, def)
}

// Float64 retrieves a numeric value as float64, which may lose precision.
func (c *Config) Float64(path string, def ...float64) (float64, error) {
	return lookup(c, path, "float64", asFloat64, def)
}

// Bool retrieves a boolean value.
func (c *Config) Bool(path string, def ...bool) (bool, error) {
	return lookup(c, path, "bool", asBool, def)
}

// Value retrieves any value that is not an object scope.
func (c *Config) Value(path string, def ...any) (any, error) {
	return lookup(c, path, "a value", asValue, def)
}

// List retrieves a list with elements of any type.
func (c *Config) List(path string, def ...[]any) ([]any, error) {
	return lookup(c, path, "list", asList, def)
}

// StringList retrieves a list whose elements are all strings.
func (c *Config) StringList(path string, def ...[]string) ([]string, error) {
	return lookup(c, path, "string list", listOf(asString), def)
}

// Int64List retrieves a list whose elements are all integers.
func (c *Config) Int64List(path string, def ...[]int64) ([]int64, error) {
	return lookup(c, path, "int64 list", listOf(asInt64), def)
}

// DecimalList retrieves a list of numbers as decimals.
func (c *Config) DecimalList(path string, def ...[]decimal.Decimal) ([]decimal.Decimal, error) {
	return lookup(c, path, "decimal list", listOf(asDecimal), def)
}

// BoolList retrieves a list whose elements are all booleans.
func (c *Config) BoolList(path string, def ...[]bool) ([]bool, error) {
	return lookup(c, path, "bool list", listOf(asBool), def)
}
