// FILE: lixenwraith/config/decode.go
package config

import (
	"fmt"
	"net"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
)

// Scan decodes the configuration into target, which must be a non-nil pointer
// to a struct or map. An optional basePath selects a section (e.g. "server").
// Fields are matched through the configured tag name. An absent section
// decodes as empty.
func (c *Config) Scan(target any, basePath ...string) error {
	var path string
	if len(basePath) > 0 {
		path = basePath[0]
	}

	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("scan target must be non-nil pointer, got %T", target)
	}

	nested := nestEntries(c.Entries(), nil)
	sectionData := navigateToPath(nested, path)

	sectionMap, ok := sectionData.(map[string]any)
	if !ok {
		if sectionData == nil {
			sectionMap = make(map[string]any)
		} else {
			return fmt.Errorf("path %q refers to non-map value (type %T)", path, sectionData)
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          c.tagName(),
		WeaklyTypedInput: true,
		DecodeHook:       getDecodeHook(),
	})
	if err != nil {
		return fmt.Errorf("decoder creation failed: %w", err)
	}

	if err := decoder.Decode(sectionMap); err != nil {
		return fmt.Errorf("decode failed for path %q: %w", path, err)
	}
	return nil
}

// getDecodeHook returns the composite decode hook for all type conversions
func getDecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		// Numbers
		decimalHookFunc(),

		// Network types, sized for the longest IPv6 address and CIDR
		stringHook(45, parseIP),
		stringHook(49, parseCIDR),
		stringHook(2048, parseURL),

		// Standard hooks
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToTimeHookFunc(time.RFC3339),
		mapstructure.StringToSliceHookFunc(","),
	)
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

// decimalHookFunc converts stored decimals into numeric and string targets, and
// numbers or strings into decimal.Decimal targets.
func decimalHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if t == decimalType {
			switch v := data.(type) {
			case decimal.Decimal:
				return v, nil
			case int64:
				return decimal.NewFromInt(v), nil
			case string:
				d, err := decimal.NewFromString(v)
				if err != nil {
					return nil, fmt.Errorf("invalid decimal %q: %w", v, err)
				}
				return d, nil
			}
			return data, nil
		}

		d, ok := data.(decimal.Decimal)
		if !ok {
			return data, nil
		}

		switch t.Kind() {
		case reflect.Float32, reflect.Float64, reflect.Interface:
			return d.InexactFloat64(), nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if !d.IsInteger() {
				return nil, fmt.Errorf("cannot decode %s into %s: not an integer", d, t)
			}
			return d.IntPart(), nil
		case reflect.String:
			return d.String(), nil
		}
		return data, nil
	}
}

// stringHook decodes string data into T or *T through parse. Inputs longer
// than maxLen are rejected before parsing.
func stringHook[T any](maxLen int, parse func(string) (*T, error)) mapstructure.DecodeHookFunc {
	target := reflect.TypeOf((*T)(nil)).Elem()
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		isPtr := t.Kind() == reflect.Pointer && t.Elem() == target
		if t != target && !isPtr {
			return data, nil
		}

		str := reflect.ValueOf(data).String()
		if len(str) > maxLen {
			return nil, fmt.Errorf("%s value too long: %d bytes", target, len(str))
		}
		v, err := parse(str)
		if err != nil {
			return nil, err
		}
		if isPtr {
			return v, nil
		}
		return *v, nil
	}
}

func parseIP(s string) (*net.IP, error) {
	ip := net.ParseIP(s)
	if ip == nil {
		return nil, fmt.Errorf("invalid IP address: %s", s)
	}
	return &ip, nil
}

func parseCIDR(s string) (*net.IPNet, error) {
	_, ipnet, err := net.ParseCIDR(s)
	if err != nil {
		return nil, fmt.Errorf("invalid CIDR: %w", err)
	}
	return ipnet, nil
}

func parseURL(s string) (*url.URL, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	return u, nil
}

// navigateToPath traverses nested map to reach the specified path
func navigateToPath(nested map[string]any, path string) any {
	path = strings.TrimSuffix(path, ".")
	if path == "" {
		return nested
	}

	current := any(nested)
	for _, segment := range strings.Split(path, ".") {
		currentMap, ok := current.(map[string]any)
		if !ok {
			return nil
		}

		value, exists := currentMap[segment]
		if !exists {
			return nil
		}
		current = value
	}

	return current
}
