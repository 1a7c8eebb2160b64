// FILE: lixenwraith/config/register.go
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

// Register makes a default value known for a configuration path.
// The path should be dot-separated (e.g., "server.port", "debug").
// Defaults are the base every file load starts from, so documents can
// substitute them, extend them, and override them. Registering also fills the
// path in the current state when nothing is set there yet.
func (c *Config) Register(path string, defaultValue any) error {
	if err := validatePath(path); err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}
	value, err := normalizeValue(defaultValue)
	if err != nil {
		return fmt.Errorf("registration failed for %q: %w", path, err)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if err := putValue(c.defaults, path, value, true); err != nil {
		return err
	}

	next := c.store.Clone()
	if err := putValue(next, path, value, false); err != nil {
		return err
	}
	c.store = next
	return nil
}

// Unregister removes a default and everything registered below it, along with
// the matching entries of the current state.
func (c *Config) Unregister(path string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	registered := c.defaults.Prefix(path)
	if len(registered) == 0 {
		return fmt.Errorf("%w: path not registered: %s", ErrPathNotFound, path)
	}

	next := c.store.Clone()
	for _, e := range registered {
		if err := c.defaults.Remove(e.Path); err != nil {
			return err
		}
		if err := next.Remove(e.Path); err != nil {
			return err
		}
	}
	c.store = next
	return nil
}

// RegisterStruct registers configuration defaults derived from a struct.
// Field paths come from the configured tag (`hocon:"..."` by default), falling
// back to the field name. Nested structs become object scopes. The prefix is
// prepended to all paths (e.g., "log."). An empty prefix is allowed.
func (c *Config) RegisterStruct(prefix string, structWithDefaults any) error {
	v := reflect.ValueOf(structWithDefaults)

	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return fmt.Errorf("RegisterStruct requires a non-nil struct pointer or value")
		}
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return fmt.Errorf("RegisterStruct requires a struct or struct pointer, got %T", structWithDefaults)
	}

	prefix = strings.TrimSuffix(prefix, ".")
	if prefix != "" {
		if err := c.Register(prefix, hocon.Node{}); err != nil {
			return err
		}
	}

	var errs []string
	c.registerFields(v, prefix, "", &errs)

	if len(errs) > 0 {
		return fmt.Errorf("failed to register %d field(s): %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}

// registerFields walks the struct recursively, registering leaves and scopes.
func (c *Config) registerFields(v reflect.Value, pathPrefix, fieldPath string, errs *[]string) {
	t := v.Type()
	tagName := c.tagName()

	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)

		if !field.IsExported() {
			continue
		}

		tag := field.Tag.Get(tagName)
		if tag == "-" {
			continue
		}

		key := field.Name
		if name, _, _ := strings.Cut(tag, ","); name != "" {
			key = name
		}

		currentPath := key
		if pathPrefix != "" {
			currentPath = pathPrefix + "." + key
		}

		nested, ok := nestedStruct(fieldValue)
		if ok {
			if err := c.Register(currentPath, hocon.Node{}); err != nil {
				*errs = append(*errs, fmt.Sprintf("field %s%s (path %s): %v", fieldPath, field.Name, currentPath, err))
				continue
			}
			c.registerFields(nested, currentPath, fieldPath+field.Name+".", errs)
			continue
		}

		if fieldValue.Kind() == reflect.Pointer && fieldValue.IsNil() {
			continue
		}
		if (fieldValue.Kind() == reflect.Slice || fieldValue.Kind() == reflect.Map) && fieldValue.IsNil() {
			continue
		}

		if err := c.registerValue(currentPath, fieldValue); err != nil {
			*errs = append(*errs, fmt.Sprintf("field %s%s (path %s): %v", fieldPath, field.Name, currentPath, err))
		}
	}
}

// registerValue registers a leaf, or an object scope for maps with string keys.
func (c *Config) registerValue(path string, v reflect.Value) error {
	if v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}
	if v.Kind() != reflect.Map {
		return c.Register(path, v.Interface())
	}
	if v.Type().Key().Kind() != reflect.String {
		return fmt.Errorf("%w: map key type %s", ErrTypeMismatch, v.Type().Key())
	}

	if err := c.Register(path, hocon.Node{}); err != nil {
		return err
	}
	iter := v.MapRange()
	for iter.Next() {
		if err := c.registerValue(path+"."+iter.Key().String(), iter.Value()); err != nil {
			return err
		}
	}
	return nil
}

// nestedStruct reports whether v should be registered as an object scope, and
// returns the dereferenced struct. Struct types that render as a single value
// (time, URLs, networks, decimals) stay leaves.
func nestedStruct(v reflect.Value) (reflect.Value, bool) {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() || v.Type().Elem().Kind() != reflect.Struct {
			return v, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return v, false
	}

	switch v.Type() {
	case reflect.TypeOf(time.Time{}), reflect.TypeOf(url.URL{}),
		reflect.TypeOf(net.IPNet{}), reflect.TypeOf(decimal.Decimal{}):
		return v, false
	}
	return v, true
}

// GetRegisteredPaths returns all registered default paths with the specified prefix.
func (c *Config) GetRegisteredPaths(prefix string) map[string]bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	result := make(map[string]bool)
	for _, e := range c.defaults.Entries() {
		if strings.HasPrefix(e.Path, prefix) {
			result[e.Path] = true
		}
	}
	return result
}

// Default returns the registered default for path.
func (c *Config) Default(path string) (any, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.defaults.Get(path)
}

func (c *Config) tagName() string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.options.TagName
}
