// File: lixenwraith/config/helper.go
package config

import (
	"fmt"
	"net"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/lixenwraith/config/hocon"
	"github.com/shopspring/decimal"
)

// nestEntries converts flattened entries into nested maps. Object scopes become
// maps; entries below a scalar are skipped, since the scalar shadows them.
// convert, when set, is applied to every leaf value.
func nestEntries(entries []hocon.Entry, convert func(any) any) map[string]any {
	root := make(map[string]any)
	for _, e := range entries {
		if e.IsNode() {
			setNestedValue(root, e.Path, nil, true)
			continue
		}
		value := e.Value
		if convert != nil {
			value = convert(value)
		}
		setNestedValue(root, e.Path, value, false)
	}
	return root
}

// setNestedValue sets a value in a nested map using a dot-notation path.
// It creates intermediate maps if they don't exist and gives up when an
// intermediate segment holds a scalar. With node set, the final segment
// becomes an empty map unless one is already there.
func setNestedValue(nested map[string]any, path string, value any, node bool) {
	segments := strings.Split(path, ".")
	current := nested

	for _, segment := range segments[:len(segments)-1] {
		next, exists := current[segment]
		if !exists {
			newMap := make(map[string]any)
			current[segment] = newMap
			current = newMap
			continue
		}
		nextMap, isMap := next.(map[string]any)
		if !isMap {
			return
		}
		current = nextMap
	}

	last := segments[len(segments)-1]
	if node {
		if _, isMap := current[last].(map[string]any); !isMap {
			current[last] = make(map[string]any)
		}
		return
	}
	current[last] = value
}

// putValue writes value at path into store, creating missing parent scopes.
// With overwrite unset, an existing entry at path is kept and a scalar parent
// blocks the write.
func putValue(store *hocon.MapStore, path string, value any, overwrite bool) error {
	segments := strings.Split(path, ".")
	for i := 1; i < len(segments); i++ {
		parent := strings.Join(segments[:i], ".")
		existing, ok := store.Get(parent)
		if ok && hocon.IsNode(existing) {
			continue
		}
		if ok && !overwrite {
			return nil
		}
		if err := store.WriteNode(parent); err != nil {
			return err
		}
	}

	if _, ok := store.Get(path); ok && !overwrite {
		return nil
	}
	if hocon.IsNode(value) {
		return store.WriteNode(path)
	}
	return store.WriteValue(path, value)
}

// normalizeValue converts a Go value into one of the stored value types:
// string, int64, decimal.Decimal, bool, []any or hocon.Node.
func normalizeValue(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, fmt.Errorf("%w: nil value", ErrTypeMismatch)
	case hocon.Node, string, int64, bool, decimal.Decimal:
		return v, nil
	case time.Duration:
		return v.String(), nil
	case time.Time:
		return v.Format(time.RFC3339), nil
	case net.IP:
		return v.String(), nil
	case net.IPNet:
		return v.String(), nil
	case *net.IPNet:
		return v.String(), nil
	case url.URL:
		return v.String(), nil
	case *url.URL:
		return v.String(), nil
	case []any:
		list := make([]any, 0, len(v))
		for _, item := range v {
			n, err := normalizeValue(item)
			if err != nil {
				return nil, err
			}
			list = append(list, n)
		}
		return list, nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > uint64(^uint64(0)>>1) {
			return nil, fmt.Errorf("%w: unsigned integer %d overflows int64", ErrTypeMismatch, u)
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		return decimal.NewFromFloat(rv.Float()), nil
	case reflect.Slice, reflect.Array:
		list := make([]any, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			n, err := normalizeValue(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			list = append(list, n)
		}
		return list, nil
	case reflect.Pointer:
		if rv.IsNil() {
			return nil, fmt.Errorf("%w: nil value", ErrTypeMismatch)
		}
		return normalizeValue(rv.Elem().Interface())
	}

	return nil, fmt.Errorf("%w: unsupported type %T", ErrTypeMismatch, value)
}

// validatePath checks that every segment of a dot-separated path is a valid key.
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("%w: path cannot be empty", ErrInvalidPath)
	}
	for _, segment := range strings.Split(path, ".") {
		if !isValidKeySegment(segment) {
			return fmt.Errorf("%w: invalid path segment %q in path %q", ErrInvalidPath, segment, path)
		}
	}
	return nil
}

// isValidKeySegment checks if a single path segment is a valid bare key:
// ASCII letters, digits, underscores and dashes.
func isValidKeySegment(s string) bool {
	if len(s) == 0 {
		return false
	}

	for _, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isUnderscore := r == '_'
		isDash := r == '-'

		if !(isLetter || isDigit || isUnderscore || isDash) {
			return false
		}
	}
	return true
}
