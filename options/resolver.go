/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package options

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

var (
	ErrUndefinedOption = errors.New("undefined option")
	ErrMissingOption   = errors.New("missing required option")
	ErrInvalidOption   = errors.New("invalid option value")
)

// Normalizer rewrites a resolved option value. It sees the other resolved
// options so it can derive values from them.
type Normalizer func(resolved map[string]any, value any) (any, error)

// Resolver validates a user supplied option map against declared options.
type Resolver struct {
	defined       map[string]struct{}
	defaults      map[string]any
	required      map[string]struct{}
	allowedValues map[string][]any
	allowedTypes  map[string][]string
	normalizers   map[string]Normalizer
}

// NewResolver returns a resolver with no declared options.
func NewResolver() *Resolver {
	return &Resolver{
		defined:       make(map[string]struct{}),
		defaults:      make(map[string]any),
		required:      make(map[string]struct{}),
		allowedValues: make(map[string][]any),
		allowedTypes:  make(map[string][]string),
		normalizers:   make(map[string]Normalizer),
	}
}

// SetDefault declares an option with a default value.
func (r *Resolver) SetDefault(name string, value any) *Resolver {
	r.defined[name] = struct{}{}
	r.defaults[name] = value
	return r
}

// SetDefined declares options that may be passed but have no default.
func (r *Resolver) SetDefined(names ...string) *Resolver {
	for _, n := range names {
		r.defined[n] = struct{}{}
	}
	return r
}

// SetRequired declares options that must be passed or defaulted.
func (r *Resolver) SetRequired(names ...string) *Resolver {
	for _, n := range names {
		r.defined[n] = struct{}{}
		r.required[n] = struct{}{}
	}
	return r
}

// SetAllowedValues restricts an option to a fixed set of values.
func (r *Resolver) SetAllowedValues(name string, values ...any) *Resolver {
	r.allowedValues[name] = values
	return r
}

// SetAllowedTypes restricts an option to value kinds: string, bool, int,
// float, map, slice, func or nil.
func (r *Resolver) SetAllowedTypes(name string, kinds ...string) *Resolver {
	r.allowedTypes[name] = kinds
	return r
}

// SetNormalizer registers a normalizer run after validation.
func (r *Resolver) SetNormalizer(name string, fn Normalizer) *Resolver {
	r.normalizers[name] = fn
	return r
}

// IsDefined reports whether the option was declared.
func (r *Resolver) IsDefined(name string) bool {
	_, ok := r.defined[name]
	return ok
}

// DefinedOptions lists declared option names, sorted.
func (r *Resolver) DefinedOptions() []string {
	names := make([]string, 0, len(r.defined))
	for n := range r.defined {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Resolve merges opts over the defaults and validates the result.
func (r *Resolver) Resolve(opts map[string]any) (map[string]any, error) {
	var unknown []string
	for name := range opts {
		if !r.IsDefined(name) {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w: %s (defined: %s)", ErrUndefinedOption,
			strings.Join(unknown, ", "), strings.Join(r.DefinedOptions(), ", "))
	}

	resolved := make(map[string]any, len(r.defined))
	for name, value := range r.defaults {
		resolved[name] = value
	}
	for name, value := range opts {
		resolved[name] = value
	}

	for name := range r.required {
		if _, ok := resolved[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingOption, name)
		}
	}

	for name, value := range resolved {
		if kinds, ok := r.allowedTypes[name]; ok && !matchesKind(value, kinds) {
			return nil, fmt.Errorf("%w: %s must be of type %s, got %T", ErrInvalidOption,
				name, strings.Join(kinds, "|"), value)
		}
		if allowed, ok := r.allowedValues[name]; ok && !containsValue(allowed, value) {
			return nil, fmt.Errorf("%w: %s=%v is not one of %v", ErrInvalidOption, name, value, allowed)
		}
	}

	for name, fn := range r.normalizers {
		value, ok := resolved[name]
		if !ok {
			continue
		}
		normalized, err := fn(resolved, value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidOption, name, err)
		}
		resolved[name] = normalized
	}
	return resolved, nil
}

// Decode copies resolved options into a struct tagged with `mapstructure`.
func Decode(resolved map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	return dec.Decode(resolved)
}

func containsValue(allowed []any, value any) bool {
	for _, a := range allowed {
		if a == nil && value == nil {
			return true
		}
		if a != nil && value != nil && reflect.TypeOf(a).Comparable() &&
			reflect.TypeOf(value).Comparable() && a == value {
			return true
		}
	}
	return false
}

func matchesKind(value any, kinds []string) bool {
	for _, k := range kinds {
		if kindOf(value) == k || k == "any" {
			return true
		}
	}
	return false
}

func kindOf(value any) string {
	if value == nil {
		return "nil"
	}
	switch reflect.TypeOf(value).Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "bool"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "int"
	case reflect.Float32, reflect.Float64:
		return "float"
	case reflect.Map:
		return "map"
	case reflect.Slice, reflect.Array:
		return "slice"
	case reflect.Func:
		return "func"
	case reflect.Ptr:
		return "ptr"
	default:
		return reflect.TypeOf(value).Kind().String()
	}
}
