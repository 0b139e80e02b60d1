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

package datasource

import (
	"fmt"
	"reflect"
	"strings"
)

// Comparison operators a field type may declare.
const (
	Eq       = "eq"
	Neq      = "neq"
	Lt       = "lt"
	Lte      = "lte"
	Gt       = "gt"
	Gte      = "gte"
	In       = "in"
	NotIn    = "notIn"
	Between  = "between"
	IsNull   = "isNull"
	Like     = "like"
	Contains = "contains"
)

// Values accepted by the isNull comparison.
const (
	NullValue    = "null"
	NotNullValue = "no_null"
)

// Predicate is a bound parameter normalized for one comparison. Drivers
// translate it into their own query language.
type Predicate struct {
	Comparison string
	Value      any
	Values     []any
	From       any
	To         any
	Null       bool
}

// Converter turns one raw scalar parameter into the value a driver compares.
type Converter func(raw any) (any, error)

// BuildPredicate normalizes raw for comparison. ok is false when the
// parameter is empty and the field must not filter.
//
// A between with only one bound side degrades to gte or lte.
func BuildPredicate(comparison string, raw any, convert Converter) (Predicate, bool, error) {
	if IsEmptyParameter(raw) {
		return Predicate{}, false, nil
	}
	if convert == nil {
		convert = func(raw any) (any, error) { return raw, nil }
	}
	p := Predicate{Comparison: comparison}
	switch comparison {
	case In, NotIn:
		list := toList(raw)
		for _, item := range list {
			if IsEmptyParameter(item) {
				continue
			}
			v, err := convert(item)
			if err != nil {
				return Predicate{}, false, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
			}
			p.Values = append(p.Values, v)
		}
		if len(p.Values) == 0 {
			return Predicate{}, false, nil
		}
	case Between:
		from, to, err := betweenBounds(raw)
		if err != nil {
			return Predicate{}, false, err
		}
		if !IsEmptyParameter(from) {
			if p.From, err = convert(from); err != nil {
				return Predicate{}, false, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
			}
		}
		if !IsEmptyParameter(to) {
			if p.To, err = convert(to); err != nil {
				return Predicate{}, false, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
			}
		}
		switch {
		case p.From == nil && p.To == nil:
			return Predicate{}, false, nil
		case p.To == nil:
			return Predicate{Comparison: Gte, Value: p.From}, true, nil
		case p.From == nil:
			return Predicate{Comparison: Lte, Value: p.To}, true, nil
		}
	case IsNull:
		isNull, err := nullCheck(raw)
		if err != nil {
			return Predicate{}, false, err
		}
		p.Null = isNull
	default:
		v, err := convert(raw)
		if err != nil {
			return Predicate{}, false, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
		}
		p.Value = v
	}
	return p, true, nil
}

// IsEmptyParameter reports whether v means "not filtered": nil, blank
// string, or an empty list or map.
func IsEmptyParameter(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func toList(raw any) []any {
	if m, ok := asMap(raw); ok {
		out := make([]any, 0, len(m))
		for _, k := range sortedKeys(m) {
			out = append(out, m[k])
		}
		return out
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out
	}
	if s, ok := raw.(string); ok && strings.Contains(s, ",") {
		parts := strings.Split(s, ",")
		out := make([]any, 0, len(parts))
		for _, part := range parts {
			out = append(out, strings.TrimSpace(part))
		}
		return out
	}
	return []any{raw}
}

func betweenBounds(raw any) (any, any, error) {
	if m, ok := asMap(raw); ok {
		return m["from"], m["to"], nil
	}
	list := toList(raw)
	if len(list) == 2 {
		return list[0], list[1], nil
	}
	return nil, nil, fmt.Errorf("%w: between expects {from, to} or two values, got %v", ErrInvalidParameter, raw)
}

func nullCheck(raw any) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case NullValue, "true", "1":
			return true, nil
		case NotNullValue, "false", "0":
			return false, nil
		}
	}
	return false, fmt.Errorf("%w: isNull expects %q or %q, got %v", ErrInvalidParameter, NullValue, NotNullValue, raw)
}
