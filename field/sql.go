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

package field

import (
	"strings"
	"time"

	ds "github.com/tomoncle/datasource"
)

// Decorator is implemented by driver field types wrapping a shared kind.
type Decorator interface {
	Unwrap() Kind
}

// ColumnLayout returns the layout the column of a temporal kind holds its
// values in. Unlike the format option it does not depend on the field.
func (t Temporal) ColumnLayout() string { return t.layout }

// Bind prepares p for an SQL placeholder. Times of temporal kinds are
// formatted with the column layout: drivers like sqlite would otherwise
// serialize them with a zone suffix that never equals a stored date.
func Bind(kind Kind, p ds.Predicate) ds.Predicate {
	for {
		d, ok := kind.(Decorator)
		if !ok {
			break
		}
		kind = d.Unwrap()
	}
	t, ok := kind.(Temporal)
	if !ok {
		return p
	}
	format := func(v any) any {
		if tm, ok := v.(time.Time); ok {
			return tm.Format(t.layout)
		}
		return v
	}
	p.Value = format(p.Value)
	p.From = format(p.From)
	p.To = format(p.To)
	if p.Values != nil {
		values := make([]any, len(p.Values))
		for i, v := range p.Values {
			values[i] = format(v)
		}
		p.Values = values
	}
	return p
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes the LIKE wildcards of s for use with ESCAPE '\'.
func EscapeLike(s string) string { return likeEscaper.Replace(s) }
