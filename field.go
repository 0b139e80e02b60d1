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
	"reflect"

	"github.com/spf13/cast"
	"github.com/tomoncle/datasource/event"
)

// Field is one filterable property of a data source. Its type is owned by
// the driver, its options are resolved once when it is added.
type Field struct {
	name       string
	fieldType  FieldType
	comparison string
	options    map[string]any
	parameter  any
	ds         *DataSource
	dirty      bool
	dispatcher *event.Dispatcher
}

func newField(ds *DataSource, name string, ft FieldType, comparison string, opts map[string]any) *Field {
	return &Field{
		name:       name,
		fieldType:  ft,
		comparison: comparison,
		options:    opts,
		ds:         ds,
		dirty:      true,
		dispatcher: event.NewDispatcher(),
	}
}

func (f *Field) Name() string            { return f.name }
func (f *Field) Type() string            { return f.fieldType.Type() }
func (f *Field) FieldType() FieldType    { return f.fieldType }
func (f *Field) Comparison() string      { return f.comparison }
func (f *Field) DataSource() *DataSource { return f.ds }

// Dispatcher returns the dispatcher of field events.
func (f *Field) Dispatcher() *event.Dispatcher { return f.dispatcher }

// Options returns a copy of the resolved options.
func (f *Field) Options() map[string]any {
	out := make(map[string]any, len(f.options))
	for k, v := range f.options {
		out[k] = v
	}
	return out
}

func (f *Field) HasOption(name string) bool {
	_, ok := f.options[name]
	return ok
}

func (f *Field) Option(name string) any { return f.options[name] }

func (f *Field) OptionString(name string) string { return cast.ToString(f.options[name]) }
func (f *Field) OptionBool(name string) bool     { return cast.ToBool(f.options[name]) }
func (f *Field) OptionInt(name string) int       { return cast.ToInt(f.options[name]) }

// Mapping is the value of the "field" option: the column, property path
// or map key the field reads.
func (f *Field) Mapping() string {
	if m := f.OptionString(OptionField); m != "" {
		return m
	}
	return f.name
}

// Parameter returns the bound raw value.
func (f *Field) Parameter() any { return f.parameter }

func (f *Field) IsDirty() bool { return f.dirty }

func (f *Field) SetDirty(dirty bool) { f.dirty = dirty }

// BindParameter binds params[<data source>]["fields"][<name>].
func (f *Field) BindParameter(ctx context.Context, params Parameters) error {
	var raw any
	if f.ds != nil {
		raw, _ = params.Get(f.ds.Name(), ParameterFields, f.name)
	}
	evt := &FieldEvent{Field: f, Value: raw}
	if err := f.dispatcher.Dispatch(ctx, FieldPreBindParameter, evt); err != nil {
		return err
	}
	if !reflect.DeepEqual(f.parameter, evt.Value) {
		f.dirty = true
	}
	f.parameter = evt.Value
	return f.dispatcher.Dispatch(ctx, FieldPostBindParameter, &FieldEvent{Field: f, Value: f.parameter})
}

// Parameters returns the parameters this field contributes, empty when
// nothing is bound.
func (f *Field) Parameters(ctx context.Context) (Parameters, error) {
	params := Parameters{}
	if !IsEmptyParameter(f.parameter) && f.ds != nil {
		params.Set([]string{f.ds.Name(), ParameterFields, f.name}, cloneValue(f.parameter))
	}
	evt := &FieldParametersEvent{Field: f, Parameters: params}
	if err := f.dispatcher.Dispatch(ctx, FieldPostGetParameter, evt); err != nil {
		return nil, err
	}
	return evt.Parameters, nil
}

func (f *Field) CreateView(ctx context.Context) (*FieldView, error) {
	fv := &FieldView{
		Name:       f.name,
		Type:       f.Type(),
		Comparison: f.comparison,
		Parameter:  f.parameter,
		Attributes: map[string]any{},
	}
	if err := f.dispatcher.Dispatch(ctx, FieldPostBuildView, &FieldViewEvent{Field: f, View: fv}); err != nil {
		return nil, err
	}
	return fv, nil
}
