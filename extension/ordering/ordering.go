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

package ordering

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/cast"

	ds "github.com/tomoncle/datasource"
	"github.com/tomoncle/datasource/event"
	"github.com/tomoncle/datasource/extension/pagination"
	"github.com/tomoncle/datasource/options"
)

// ParameterSort is read from the data source's own parameters.
const ParameterSort = "sort"

// Field options added to every field type.
const (
	OptionSortable            = "sortable"
	OptionDefaultSort         = "default_sort"
	OptionDefaultSortPriority = "default_sort_priority"
)

// Sort directions.
const (
	Asc  = "asc"
	Desc = "desc"
)

// Field view attributes set on FieldPostBuildView.
const (
	AttributeSortable                 = "sortable"
	AttributeSortedAscending          = "sorted_ascending"
	AttributeSortedDescending         = "sorted_descending"
	AttributeParametersSortAscending  = "parameters_sort_ascending"
	AttributeParametersSortDescending = "parameters_sort_descending"
)

// Sort is one sort key bound from parameters.
type Sort struct {
	Field string
	Desc  bool
}

func (s Sort) String() string {
	if s.Desc {
		return "-" + s.Field
	}
	return s.Field
}

// Extension orders results by the "sort" parameter, falling back to the
// default_sort options of the fields. It keeps state per data source
// name, so use one instance per factory.
type Extension struct {
	mu    sync.Mutex
	sorts map[string][]Sort
}

func New() *Extension {
	return &Extension{sorts: make(map[string][]Sort)}
}

func (e *Extension) Subscriptions() []event.Subscription {
	return []event.Subscription{
		{Event: ds.PreBindParameters, Priority: 0, Listener: e.preBind},
		{Event: ds.PostGetParameters, Priority: 0, Listener: e.postGetParameters},
	}
}

func (e *Extension) DriverExtensions() []ds.DriverExtension {
	return []ds.DriverExtension{&driverExtension{e}}
}

// Sorts returns the sorts bound to the named data source.
func (e *Extension) Sorts(name string) []Sort {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Sort(nil), e.sorts[name]...)
}

func (e *Extension) setSorts(name string, sorts []Sort) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sorts[name] = sorts
}

func (e *Extension) preBind(_ context.Context, evt any) error {
	pe := evt.(*ds.ParametersEvent)
	source := pe.DataSource
	raw := pe.Parameters.Sub(source.Name())[ParameterSort]

	var sorts []Sort
	seen := map[string]bool{}
	for _, s := range ParseSort(raw) {
		f, err := source.Field(s.Field)
		if err != nil || !f.OptionBool(OptionSortable) || seen[s.Field] {
			continue
		}
		seen[s.Field] = true
		sorts = append(sorts, s)
	}
	e.setSorts(source.Name(), sorts)
	return nil
}

func (e *Extension) postGetParameters(_ context.Context, evt any) error {
	pe := evt.(*ds.ParametersEvent)
	name := pe.DataSource.Name()
	if sorts := e.Sorts(name); len(sorts) > 0 {
		pe.Parameters.Set([]string{name, ParameterSort}, FormatSort(sorts))
	}
	return nil
}

// ParseSort reads "title,-created_at", a list of such tokens, or a map
// of field to asc|desc. Map keys are taken in sorted order.
func ParseSort(raw any) []Sort {
	if p, ok := raw.(ds.Parameters); ok {
		raw = map[string]any(p)
	}
	var tokens []string
	switch v := raw.(type) {
	case nil:
		return nil
	case string:
		tokens = strings.Split(v, ",")
	case []string:
		tokens = v
	case []any:
		for _, item := range v {
			tokens = append(tokens, cast.ToString(item))
		}
	case map[string]any, map[string]string:
		m := cast.ToStringMapString(v)
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var out []Sort
		for _, k := range keys {
			out = append(out, Sort{Field: k, Desc: strings.EqualFold(m[k], Desc)})
		}
		return out
	default:
		tokens = []string{cast.ToString(v)}
	}

	var out []Sort
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		switch {
		case tok == "":
			continue
		case strings.HasPrefix(tok, "-"):
			out = append(out, Sort{Field: tok[1:], Desc: true})
		default:
			out = append(out, Sort{Field: strings.TrimPrefix(tok, "+")})
		}
	}
	return out
}

// FormatSort is the inverse of ParseSort for strings.
func FormatSort(sorts []Sort) string {
	parts := make([]string, len(sorts))
	for i, s := range sorts {
		parts[i] = s.String()
	}
	return strings.Join(parts, ",")
}

type driverExtension struct {
	ext *Extension
}

func (d *driverExtension) ExtendedDriverTypes() []string { return []string{ds.Any} }
func (d *driverExtension) FieldTypes() []ds.FieldType    { return nil }

func (d *driverExtension) FieldTypeExtensions() []ds.FieldTypeExtension {
	return []ds.FieldTypeExtension{&fieldExtension{d.ext}}
}

func (d *driverExtension) Subscriptions() []event.Subscription {
	return []event.Subscription{{Event: ds.DriverPreGetResult, Priority: 0, Listener: d.preGetResult}}
}

// preGetResult applies the bound sorts in order, then the default sorts
// of the remaining fields by descending priority.
func (d *driverExtension) preGetResult(_ context.Context, evt any) error {
	de := evt.(*ds.DriverEvent)
	if de.DataSource == nil {
		return nil
	}
	byName := make(map[string]*ds.Field, len(de.Fields))
	for _, f := range de.Fields {
		byName[f.Name()] = f
	}

	type keyed struct {
		field *ds.Field
		desc  bool
	}
	var keys []keyed
	sorted := map[string]bool{}
	for _, s := range d.ext.Sorts(de.DataSource.Name()) {
		if f, ok := byName[s.Field]; ok {
			keys = append(keys, keyed{f, s.Desc})
			sorted[s.Field] = true
		}
	}
	var defaults []*ds.Field
	for _, f := range de.Fields {
		if !sorted[f.Name()] && f.OptionString(OptionDefaultSort) != "" {
			defaults = append(defaults, f)
		}
	}
	sort.SliceStable(defaults, func(i, j int) bool {
		return defaults[i].OptionInt(OptionDefaultSortPriority) > defaults[j].OptionInt(OptionDefaultSortPriority)
	})
	for _, f := range defaults {
		keys = append(keys, keyed{f, f.OptionString(OptionDefaultSort) == Desc})
	}
	if len(keys) == 0 {
		return nil
	}

	sorter, ok := de.Query.(ds.Sorter)
	if !ok {
		return fmt.Errorf("%w: %T", ds.ErrUnsupportedOrdering, de.Query)
	}
	for _, k := range keys {
		if err := sorter.OrderBy(k.field, k.desc); err != nil {
			return err
		}
	}
	return nil
}

type fieldExtension struct {
	ext *Extension
}

func (f *fieldExtension) ExtendedFieldTypes() []string { return []string{ds.Any} }

func (f *fieldExtension) DefineOptions(r *options.Resolver) {
	r.SetDefault(OptionSortable, true)
	r.SetAllowedTypes(OptionSortable, "bool")
	r.SetDefault(OptionDefaultSort, nil)
	r.SetAllowedValues(OptionDefaultSort, nil, Asc, Desc)
	r.SetDefault(OptionDefaultSortPriority, 0)
	r.SetAllowedTypes(OptionDefaultSortPriority, "int")
}

func (f *fieldExtension) Subscriptions() []event.Subscription {
	return []event.Subscription{{Event: ds.FieldPostBuildView, Priority: 0, Listener: f.postBuildView}}
}

func (f *fieldExtension) postBuildView(ctx context.Context, evt any) error {
	fe := evt.(*ds.FieldViewEvent)
	field, view := fe.Field, fe.View
	sortable := field.OptionBool(OptionSortable)
	view.SetAttribute(AttributeSortable, sortable)
	if !sortable || field.DataSource() == nil {
		return nil
	}
	source := field.DataSource()
	current := f.ext.Sorts(source.Name())

	asc, desc := false, false
	for _, s := range current {
		if s.Field == field.Name() {
			asc, desc = !s.Desc, s.Desc
		}
	}
	view.SetAttribute(AttributeSortedAscending, asc)
	view.SetAttribute(AttributeSortedDescending, desc)

	all, err := source.AllParameters(ctx)
	if err != nil {
		return err
	}
	view.SetAttribute(AttributeParametersSortAscending, sortParameters(all, source.Name(), field.Name(), false, current))
	view.SetAttribute(AttributeParametersSortDescending, sortParameters(all, source.Name(), field.Name(), true, current))
	return nil
}

// sortParameters puts name first in the sort of the data source, keeps
// the other keys and resets the page.
func sortParameters(all ds.Parameters, source, name string, desc bool, current []Sort) ds.Parameters {
	sorts := []Sort{{Field: name, Desc: desc}}
	for _, s := range current {
		if s.Field != name {
			sorts = append(sorts, s)
		}
	}
	params := all.Clone()
	params.Set([]string{source, ParameterSort}, FormatSort(sorts))
	params.Delete(source, pagination.ParameterPage)
	return params
}
