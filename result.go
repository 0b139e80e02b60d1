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

// Result is the outcome of a driver query. Count is the number of
// matching items ignoring pagination.
type Result interface {
	Count() int
	Items() []any
	Len() int
}

type result struct {
	items []any
	total int
}

// NewResult returns a result holding items out of total matches.
func NewResult(items []any, total int) Result {
	if total < len(items) {
		total = len(items)
	}
	return &result{items: items, total: total}
}

// EmptyResult returns a result with no items.
func EmptyResult() Result { return &result{} }

func (r *result) Count() int   { return r.total }
func (r *result) Items() []any { return r.items }
func (r *result) Len() int     { return len(r.items) }

// Items returns the items of r that are of type T.
func Items[T any](r Result) []T {
	if r == nil {
		return nil
	}
	out := make([]T, 0, r.Len())
	for _, item := range r.Items() {
		if v, ok := item.(T); ok {
			out = append(out, v)
		}
	}
	return out
}
