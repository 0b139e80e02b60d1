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
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/tomoncle/datasource/event"
	"github.com/tomoncle/datasource/options"
)

var namePattern = regexp.MustCompile(`^\w+$`)

// DefaultName is used when a data source is created without a name.
const DefaultName = "datasource"

// DataSource binds request parameters to the fields of one driver and
// exposes the filtered result and its view. A DataSource is not safe for
// concurrent use; create one per request.
type DataSource struct {
	name       string
	driver     Driver
	factory    *Factory
	fields     []*Field
	dispatcher *event.Dispatcher
	extensions []Extension
	first      int
	max        int
	result     Result
	dirty      bool
}

// ValidName reports whether name can name a data source: letters,
// digits and underscores only.
func ValidName(name string) bool { return namePattern.MatchString(name) }

// New returns a data source named name using driver.
func New(name string, driver Driver) (*DataSource, error) {
	if !ValidName(name) {
		return nil, fmt.Errorf("%w: %q must match %s", ErrInvalidName, name, namePattern)
	}
	return &DataSource{
		name:       name,
		driver:     driver,
		dispatcher: event.NewDispatcher(),
		dirty:      true,
	}, nil
}

func (ds *DataSource) Name() string      { return ds.name }
func (ds *DataSource) Driver() Driver    { return ds.driver }
func (ds *DataSource) Factory() *Factory { return ds.factory }

func (ds *DataSource) SetFactory(f *Factory) { ds.factory = f }

// Dispatcher returns the dispatcher of data source events.
func (ds *DataSource) Dispatcher() *event.Dispatcher { return ds.dispatcher }

// AddField adds a field of the driver's field type typ. An empty
// comparison selects the only comparison of single-comparison types.
// A field with the same name is replaced.
func (ds *DataSource) AddField(name, typ, comparison string, opts map[string]any) (*Field, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty field name", ErrUnknownField)
	}
	ft, err := ds.driver.FieldType(typ)
	if err != nil {
		return nil, err
	}
	if comparison == "" {
		if cs := ft.Comparisons(); len(cs) == 1 {
			comparison = cs[0]
		}
	}
	if !AllowsComparison(ft, comparison) {
		return nil, fmt.Errorf("%w: %q on %s field %q (allowed: %v)",
			ErrInvalidComparison, comparison, typ, name, ft.Comparisons())
	}

	exts := ds.driver.FieldTypeExtensions(typ)
	r := options.NewResolver()
	r.SetDefault(OptionField, name)
	r.SetAllowedTypes(OptionField, "string")
	ft.DefineOptions(r)
	for _, ext := range exts {
		ext.DefineOptions(r)
	}
	resolved, err := r.Resolve(opts)
	if err != nil {
		return nil, fmt.Errorf("field %q of data source %q: %w", name, ds.name, err)
	}

	f := newField(ds, name, ft, comparison, resolved)
	for _, ext := range exts {
		f.dispatcher.AddSubscriber(ext)
	}
	for i, existing := range ds.fields {
		if existing.name == name {
			ds.fields[i] = f
			ds.dirty = true
			return f, nil
		}
	}
	ds.fields = append(ds.fields, f)
	ds.dirty = true
	return f, nil
}

// RemoveField removes the named field and reports whether it existed.
func (ds *DataSource) RemoveField(name string) bool {
	for i, f := range ds.fields {
		if f.name == name {
			ds.fields = append(ds.fields[:i], ds.fields[i+1:]...)
			ds.dirty = true
			return true
		}
	}
	return false
}

func (ds *DataSource) HasField(name string) bool {
	_, err := ds.Field(name)
	return err == nil
}

func (ds *DataSource) Field(name string) (*Field, error) {
	for _, f := range ds.fields {
		if f.name == name {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %q in data source %q", ErrUnknownField, name, ds.name)
}

// Fields returns the fields in insertion order.
func (ds *DataSource) Fields() []*Field {
	out := make([]*Field, len(ds.fields))
	copy(out, ds.fields)
	return out
}

func (ds *DataSource) ClearFields() {
	ds.fields = nil
	ds.dirty = true
}

// SetMaxResults limits the page size; 0 means unlimited.
func (ds *DataSource) SetMaxResults(n int) {
	if n < 0 {
		n = 0
	}
	if n != ds.max {
		ds.max = n
		ds.dirty = true
	}
}

func (ds *DataSource) MaxResults() int { return ds.max }

// SetFirstResult sets the offset of the first item; negative values are
// treated as 0.
func (ds *DataSource) SetFirstResult(first int) {
	if first < 0 {
		first = 0
	}
	if first != ds.first {
		ds.first = first
		ds.dirty = true
	}
}

func (ds *DataSource) FirstResult() int { return ds.first }

// AddExtension subscribes ext to data source events and loads those of
// its driver extensions that extend this driver. Field type extensions
// apply to fields added afterwards.
func (ds *DataSource) AddExtension(ext Extension) error {
	for _, de := range ext.DriverExtensions() {
		if !extendsType(de.ExtendedDriverTypes(), ds.driver.Type()) {
			continue
		}
		if err := ds.driver.AddExtension(de); err != nil {
			return err
		}
	}
	ds.dispatcher.AddSubscriber(ext)
	ds.extensions = append(ds.extensions, ext)
	return nil
}

func (ds *DataSource) Extensions() []Extension {
	out := make([]Extension, len(ds.extensions))
	copy(out, ds.extensions)
	return out
}

// BindParameters binds params to every field. PreBindParameters listeners
// may rewrite the parameters or add fields first.
func (ds *DataSource) BindParameters(ctx context.Context, params Parameters) error {
	pre := &ParametersEvent{DataSource: ds, Parameters: params.Clone()}
	if err := ds.dispatcher.Dispatch(ctx, PreBindParameters, pre); err != nil {
		return err
	}
	params = pre.Parameters
	for _, f := range ds.fields {
		if err := f.BindParameter(ctx, params); err != nil {
			return fmt.Errorf("bind %s.%s: %w", ds.name, f.name, err)
		}
	}
	ds.dirty = true
	post := &ParametersEvent{DataSource: ds, Parameters: params}
	return ds.dispatcher.Dispatch(ctx, PostBindParameters, post)
}

func (ds *DataSource) isDirty() bool {
	if ds.dirty || ds.result == nil {
		return true
	}
	for _, f := range ds.fields {
		if f.dirty {
			return true
		}
	}
	return false
}

// Result runs the driver, or returns the previous result when neither
// parameters, fields nor pagination changed since.
func (ds *DataSource) Result(ctx context.Context) (Result, error) {
	if !ds.isDirty() {
		return ds.result, nil
	}
	if err := ds.dispatcher.Dispatch(ctx, PreGetResult, &DataSourceEvent{DataSource: ds}); err != nil {
		return nil, err
	}
	start := time.Now()
	res, err := ds.driver.Result(ContextWithDataSource(ctx, ds), ds.Fields(), ds.first, ds.max)
	if err != nil {
		GetLogger().Error("data source query failed", "datasource", ds.name,
			"driver", ds.driver.Type(), "error", err)
		return nil, err
	}
	GetLogger().Debug("data source query", "datasource", ds.name, "driver", ds.driver.Type(),
		"count", res.Count(), "items", res.Len(), "elapsed", time.Since(start))
	for _, f := range ds.fields {
		f.dirty = false
	}
	post := &ResultEvent{DataSource: ds, Result: res}
	if err := ds.dispatcher.Dispatch(ctx, PostGetResult, post); err != nil {
		return nil, err
	}
	ds.result = post.Result
	ds.dirty = false
	return ds.result, nil
}

// Parameters returns the parameters of this data source: bound field
// values plus whatever PostGetParameters listeners add.
func (ds *DataSource) Parameters(ctx context.Context) (Parameters, error) {
	params := Parameters{}
	for _, f := range ds.fields {
		fp, err := f.Parameters(ctx)
		if err != nil {
			return nil, err
		}
		params.Merge(fp)
	}
	evt := &ParametersEvent{DataSource: ds, Parameters: params}
	if err := ds.dispatcher.Dispatch(ctx, PostGetParameters, evt); err != nil {
		return nil, err
	}
	return evt.Parameters, nil
}

// AllParameters returns the parameters of every data source of the
// factory, or only this one's when it has no factory.
func (ds *DataSource) AllParameters(ctx context.Context) (Parameters, error) {
	if ds.factory == nil {
		return ds.Parameters(ctx)
	}
	return ds.factory.AllParameters(ctx)
}

// OtherParameters returns the parameters of the factory's other data sources.
func (ds *DataSource) OtherParameters(ctx context.Context) (Parameters, error) {
	if ds.factory == nil {
		return Parameters{}, nil
	}
	return ds.factory.OtherParameters(ctx, ds)
}

func (ds *DataSource) CreateView(ctx context.Context) (*View, error) {
	if err := ds.dispatcher.Dispatch(ctx, PreBuildView, &DataSourceEvent{DataSource: ds}); err != nil {
		return nil, err
	}
	params, err := ds.Parameters(ctx)
	if err != nil {
		return nil, err
	}
	other, err := ds.OtherParameters(ctx)
	if err != nil {
		return nil, err
	}
	view := NewView(ds.name, params, other)
	for _, f := range ds.fields {
		fv, err := f.CreateView(ctx)
		if err != nil {
			return nil, err
		}
		view.AddField(fv)
	}
	if err := ds.dispatcher.Dispatch(ctx, PostBuildView, &ViewEvent{DataSource: ds, View: view}); err != nil {
		return nil, err
	}
	return view, nil
}

type dataSourceKey struct{}

// ContextWithDataSource attaches ds to ctx for driver listeners.
func ContextWithDataSource(ctx context.Context, ds *DataSource) context.Context {
	return context.WithValue(ctx, dataSourceKey{}, ds)
}

// DataSourceFromContext returns the data source whose result is being
// built, or nil.
func DataSourceFromContext(ctx context.Context) *DataSource {
	ds, _ := ctx.Value(dataSourceKey{}).(*DataSource)
	return ds
}
