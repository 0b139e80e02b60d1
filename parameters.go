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
	"net/url"
	"sort"
	"strings"

	"github.com/spf13/cast"
)

// Keys used inside the parameters of one data source.
const (
	ParameterFields = "fields"
)

// Parameters is the nested parameter tree bound to data sources:
//
//	{"news": {"fields": {"title": "go"}, "page": 2, "sort": "-created"}}
type Parameters map[string]any

// Get walks path and returns the value found at its end.
func (p Parameters) Get(path ...string) (any, bool) {
	var cur any = p
	for _, key := range path {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Sub returns the nested map stored under key, or nil.
func (p Parameters) Sub(key string) Parameters {
	v, ok := p[key]
	if !ok {
		return nil
	}
	m, _ := asMap(v)
	return m
}

// Set stores value at path, creating intermediate maps.
func (p Parameters) Set(path []string, value any) {
	if len(path) == 0 {
		return
	}
	cur := p
	for _, key := range path[:len(path)-1] {
		next, ok := asMap(cur[key])
		if !ok {
			next = Parameters{}
		}
		cur[key] = next
		cur = next
	}
	cur[path[len(path)-1]] = value
}

// Delete removes the value at path and prunes maps left empty.
func (p Parameters) Delete(path ...string) {
	if len(path) == 0 {
		return
	}
	if len(path) == 1 {
		delete(p, path[0])
		return
	}
	child, ok := asMap(p[path[0]])
	if !ok {
		return
	}
	child.Delete(path[1:]...)
	if len(child) == 0 {
		delete(p, path[0])
	} else {
		p[path[0]] = child
	}
}

// Clone deep copies nested maps and slices.
func (p Parameters) Clone() Parameters {
	if p == nil {
		return Parameters{}
	}
	out := make(Parameters, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

// Merge deep merges other into p; values of other win.
func (p Parameters) Merge(other Parameters) Parameters {
	for k, v := range other {
		src, srcIsMap := asMap(v)
		dst, dstIsMap := asMap(p[k])
		if srcIsMap && dstIsMap {
			p[k] = dst.Merge(src)
			continue
		}
		p[k] = cloneValue(v)
	}
	return p
}

// Encode renders the parameters in bracket notation with sorted keys,
// the inverse of ParseQuery.
func (p Parameters) Encode() string {
	var parts []string
	encodeInto(&parts, "", p)
	return strings.Join(parts, "&")
}

func encodeInto(parts *[]string, prefix string, v any) {
	if m, ok := asMap(v); ok {
		for _, k := range sortedKeys(m) {
			name := k
			if prefix != "" {
				name = prefix + "[" + k + "]"
			}
			encodeInto(parts, name, m[k])
		}
		return
	}
	if list, ok := v.([]any); ok {
		for _, item := range list {
			encodeInto(parts, prefix+"[]", item)
		}
		return
	}
	if list, ok := v.([]string); ok {
		for _, item := range list {
			encodeInto(parts, prefix+"[]", item)
		}
		return
	}
	if v == nil {
		return
	}
	*parts = append(*parts, url.QueryEscape(prefix)+"="+url.QueryEscape(fmt.Sprint(v)))
}

// ParseQuery converts bracket notation query values into Parameters.
// "a[b][c]=1" sets {"a":{"b":{"c":"1"}}}; "a[]=1&a[]=2" yields a list.
func ParseQuery(values url.Values) Parameters {
	out := Parameters{}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, raw := range keys {
		path, isList := splitBracketKey(raw)
		if len(path) == 0 {
			continue
		}
		vals := values[raw]
		if isList {
			list := make([]any, 0, len(vals))
			for _, v := range vals {
				list = append(list, v)
			}
			out.Set(path, list)
			continue
		}
		out.Set(path, vals[len(vals)-1])
	}
	return out
}

func splitBracketKey(raw string) ([]string, bool) {
	idx := strings.IndexByte(raw, '[')
	if idx < 0 {
		return []string{raw}, false
	}
	path := []string{raw[:idx]}
	rest := raw[idx:]
	isList := false
	for len(rest) > 0 && rest[0] == '[' {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			break
		}
		key := rest[1:end]
		rest = rest[end+1:]
		if key == "" {
			isList = true
			break
		}
		path = append(path, key)
	}
	if path[0] == "" {
		return nil, false
	}
	return path, isList
}

func asMap(v any) (Parameters, bool) {
	switch m := v.(type) {
	case Parameters:
		return m, true
	case map[string]any:
		return m, true
	case map[string]string:
		out := make(Parameters, len(m))
		for k, s := range m {
			out[k] = s
		}
		return out, true
	case map[any]any:
		out := make(Parameters, len(m))
		for k, s := range m {
			out[fmt.Sprint(k)] = s
		}
		return out, true
	}
	return nil, false
}

func cloneValue(v any) any {
	if m, ok := asMap(v); ok {
		return m.Clone()
	}
	switch list := v.(type) {
	case []any:
		out := make([]any, len(list))
		for i, item := range list {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), list...)
	}
	return v
}

// IntParameter reads an integer stored as number or numeric string.
// Fractional numbers and booleans are not integers.
func IntParameter(v any) (int, bool) {
	switch n := v.(type) {
	case nil, bool:
		return 0, false
	case float32:
		if n != float32(int(n)) {
			return 0, false
		}
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
	case string:
		// cast reads "" as 0 and drops decimals
		n = strings.TrimSpace(n)
		if n == "" || strings.Contains(n, ".") {
			return 0, false
		}
		v = n
	}
	i, err := cast.ToIntE(v)
	return i, err == nil
}

func sortedKeys(m Parameters) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
