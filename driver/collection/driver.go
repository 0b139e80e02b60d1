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
	"context"
	"fmt"
	"reflect"
	"sort"
	"time"

	ds "github.com/tomoncle/datasource"
	"github.com/tomoncle/datasource/field"
	"github.com/tomoncle/datasource/options"
)

// DriverType is the type name of the in-memory driver.
const DriverType = "collection"

// Driver options.
const (
	OptionCollection = "collection"
	OptionFilter     = "filter"
)

// Factory creates collection drivers.
type Factory struct{}

func NewFactory() *Factory { return &Factory{} }

func (*Factory) DriverType() string { return DriverType }

// CreateDriver expects the "collection" option to be a slice or array.
// The optional "filter" function drops items before any field filters.
func (*Factory) CreateDriver(opts map[string]any) (ds.Driver, error) {
	r := options.NewResolver()
	r.SetRequired(OptionCollection)
	r.SetAllowedTypes(OptionCollection, "slice")
	r.SetDefault(OptionFilter, nil)
	r.SetAllowedTypes(OptionFilter, "nil", "func")
	resolved, err := r.Resolve(opts)
	if err != nil {
		return nil, err
	}
	var filter func(any) bool
	if resolved[OptionFilter] != nil {
		fn, ok := resolved[OptionFilter].(func(any) bool)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be func(any) bool, got %T",
				options.ErrInvalidOption, OptionFilter, resolved[OptionFilter])
		}
		filter = fn
	}
	return NewDriver(toSlice(resolved[OptionCollection]), filter), nil
}

// Driver filters, sorts and slices an in-memory collection.
type Driver struct {
	*ds.DriverBase
	items  []any
	filter func(any) bool
}

func NewDriver(items []any, filter func(any) bool) *Driver {
	kinds := field.Kinds()
	types := make([]ds.FieldType, len(kinds))
	for i, k := range kinds {
		types[i] = k
	}
	return &Driver{
		DriverBase: ds.NewDriverBase(DriverType, types...),
		items:      items,
		filter:     filter,
	}
}

func (d *Driver) Result(ctx context.Context, fields []*ds.Field, first, limit int) (ds.Result, error) {
	q := &Query{items: make([]any, 0, len(d.items))}
	for _, item := range d.items {
		if d.filter == nil || d.filter(item) {
			q.items = append(q.items, item)
		}
	}
	return d.Execute(ctx, d, fields, q, func(context.Context) (ds.Result, error) {
		for _, f := range fields {
			kind, ok := f.FieldType().(field.Kind)
			if !ok {
				return nil, fmt.Errorf("%w: %s is not a collection field type", ds.ErrUnknownFieldType, f.Type())
			}
			p, ok, err := field.Build(f, kind)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", f.Name(), err)
			}
			if !ok {
				continue
			}
			if t, temporal := kind.(field.Temporal); temporal {
				q.where(f.Mapping(), field.Bind(kind, p), columnValue(f, t))
			} else {
				q.Where(f.Mapping(), p)
			}
		}
		q.sort()
		total := len(q.items)
		return ds.NewResult(page(q.items, first, limit), total), nil
	})
}

// columnValue formats item values of temporal fields the way field.Bind
// formats the parameters, so dates compare on their wall clock like in a
// DATE column.
func columnValue(f *ds.Field, t field.Temporal) func(any) any {
	return func(v any) any {
		if isNil(v) {
			return nil
		}
		tm, err := t.Convert(f, v)
		if err != nil {
			return v
		}
		return tm.(time.Time).Format(t.ColumnLayout())
	}
}

func page(items []any, first, limit int) []any {
	if first >= len(items) {
		return []any{}
	}
	items = items[first:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

type sortKey struct {
	path string
	desc bool
}

// Query is the collection driver's query object: the items left after
// the base filter, narrowed by Where and ordered by OrderBy.
type Query struct {
	items []any
	sorts []sortKey
}

// Items returns the items currently selected.
func (q *Query) Items() []any { return q.items }

// Where keeps the items whose value at path matches p.
func (q *Query) Where(path string, p ds.Predicate) { q.where(path, p, nil) }

func (q *Query) where(path string, p ds.Predicate, value func(any) any) {
	kept := q.items[:0:0]
	for _, item := range q.items {
		v, _ := Value(item, path)
		if value != nil {
			v = value(v)
		}
		if match(p, v) {
			kept = append(kept, item)
		}
	}
	q.items = kept
}

// OrderBy appends a sort key on the field's mapping.
func (q *Query) OrderBy(f *ds.Field, desc bool) error {
	q.sorts = append(q.sorts, sortKey{path: f.Mapping(), desc: desc})
	return nil
}

func (q *Query) sort() {
	if len(q.sorts) == 0 {
		return
	}
	sort.SliceStable(q.items, func(i, j int) bool {
		for _, k := range q.sorts {
			a, _ := Value(q.items[i], k.path)
			b, _ := Value(q.items[j], k.path)
			c := compareValues(a, b)
			if c == 0 {
				continue
			}
			if k.desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func toSlice(v any) []any {
	if items, ok := v.([]any); ok {
		out := make([]any, len(items))
		copy(out, items)
		return out
	}
	rv := reflect.ValueOf(v)
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}
