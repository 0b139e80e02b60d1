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
	"strings"
	"time"

	"github.com/spf13/cast"
	"golang.org/x/text/cases"

	ds "github.com/tomoncle/datasource"
)

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}

// match evaluates p against the item value v. A nil value only matches
// isNull, as in SQL.
func match(p ds.Predicate, v any) bool {
	if p.Comparison == ds.IsNull {
		return isNil(v) == p.Null
	}
	if isNil(v) {
		return false
	}
	switch p.Comparison {
	case ds.Eq:
		c, ok := compareTo(v, p.Value)
		return ok && c == 0
	case ds.Neq:
		c, ok := compareTo(v, p.Value)
		return ok && c != 0
	case ds.Lt:
		c, ok := compareTo(v, p.Value)
		return ok && c < 0
	case ds.Lte:
		c, ok := compareTo(v, p.Value)
		return ok && c <= 0
	case ds.Gt:
		c, ok := compareTo(v, p.Value)
		return ok && c > 0
	case ds.Gte:
		c, ok := compareTo(v, p.Value)
		return ok && c >= 0
	case ds.In, ds.NotIn:
		found := false
		for _, want := range p.Values {
			if c, ok := compareTo(v, want); ok && c == 0 {
				found = true
				break
			}
		}
		return found == (p.Comparison == ds.In)
	case ds.Between:
		lo, ok1 := compareTo(v, p.From)
		hi, ok2 := compareTo(v, p.To)
		return ok1 && ok2 && lo >= 0 && hi <= 0
	case ds.Like:
		return strings.Contains(cast.ToString(v), cast.ToString(p.Value))
	case ds.Contains:
		fold := cases.Fold()
		return strings.Contains(fold.String(cast.ToString(v)), fold.String(cast.ToString(p.Value)))
	}
	return false
}

// compareTo coerces v to the type of the converted parameter want and
// compares them. ok is false when v cannot be coerced.
func compareTo(v, want any) (int, bool) {
	switch w := want.(type) {
	case time.Time:
		t, err := cast.ToTimeE(v)
		if err != nil {
			return 0, false
		}
		return t.Compare(w), true
	case int64, float64:
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return 0, false
		}
		return compareFloat(f, cast.ToFloat64(w)), true
	case bool:
		b, err := cast.ToBoolE(v)
		if err != nil {
			return 0, false
		}
		return compareBool(b, w), true
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return 0, false
	}
	return strings.Compare(s, cast.ToString(want)), true
}

// compareValues orders two item values for sorting; nil sorts first.
func compareValues(a, b any) int {
	switch an, bn := isNil(a), isNil(b); {
	case an && bn:
		return 0
	case an:
		return -1
	case bn:
		return 1
	}
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Compare(bt)
		}
	}
	if isNumber(a) && isNumber(b) {
		return compareFloat(cast.ToFloat64(a), cast.ToFloat64(b))
	}
	if ab, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			return compareBool(ab, bb)
		}
	}
	return strings.Compare(cast.ToString(a), cast.ToString(b))
}

func isNumber(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}
