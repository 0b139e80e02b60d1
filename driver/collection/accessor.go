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

package collection

import (
	"reflect"
	"strconv"
	"strings"
)

// Value reads the dotted path from item. Each step looks up a map key,
// a slice index or a struct field matched by name, case-insensitive name
// or json tag, dereferencing pointers and interfaces along the way.
func Value(item any, path string) (any, bool) {
	cur := reflect.ValueOf(item)
	for _, key := range strings.Split(path, ".") {
		cur = indirect(cur)
		if !cur.IsValid() {
			return nil, true
		}
		next, ok := step(cur, key)
		if !ok {
			return nil, false
		}
		cur = next
	}
	cur = indirect(cur)
	if !cur.IsValid() {
		return nil, true
	}
	return cur.Interface(), true
}

func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func step(v reflect.Value, key string) (reflect.Value, bool) {
	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return reflect.Value{}, false
		}
		mv := v.MapIndex(reflect.ValueOf(key).Convert(v.Type().Key()))
		return mv, mv.IsValid()
	case reflect.Slice, reflect.Array:
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || i >= v.Len() {
			return reflect.Value{}, false
		}
		return v.Index(i), true
	case reflect.Struct:
		idx, ok := structField(v.Type(), key)
		if !ok {
			return reflect.Value{}, false
		}
		fv, err := v.FieldByIndexErr(idx)
		if err != nil {
			// nil embedded pointer on the way to a promoted field
			return reflect.Value{}, true
		}
		return fv, true
	}
	return reflect.Value{}, false
}

func structField(t reflect.Type, key string) ([]int, bool) {
	if sf, ok := t.FieldByName(key); ok && sf.IsExported() {
		return sf.Index, true
	}
	var byTag []int
	for _, sf := range reflect.VisibleFields(t) {
		if !sf.IsExported() || sf.Anonymous {
			continue
		}
		if strings.EqualFold(sf.Name, key) {
			return sf.Index, true
		}
		if byTag == nil {
			if name, _, _ := strings.Cut(sf.Tag.Get("json"), ","); name == key {
				byTag = sf.Index
			}
		}
	}
	return byTag, byTag != nil
}
