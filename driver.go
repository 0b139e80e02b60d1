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
	"sort"
	"sync"

	"github.com/tomoncle/datasource/event"
)

// Driver turns bound fields into a result.
type Driver interface {
	Type() string
	HasFieldType(typ string) bool
	FieldType(typ string) (FieldType, error)
	FieldTypeExtensions(typ string) []FieldTypeExtension
	AddExtension(ext DriverExtension) error
	Result(ctx context.Context, fields []*Field, first, limit int) (Result, error)
}

// Sorter is implemented by driver query objects that can be ordered.
type Sorter interface {
	OrderBy(field *Field, desc bool) error
}

// DriverBase holds the field type registry, loaded extensions and event
// dispatcher shared by all drivers. Embed it and implement Result.
type DriverBase struct {
	typ        string
	mu         sync.RWMutex
	fieldTypes map[string]FieldType
	extensions []DriverExtension
	dispatcher *event.Dispatcher
}

// NewDriverBase returns a driver base of type typ with the given field types.
func NewDriverBase(typ string, types ...FieldType) *DriverBase {
	d := &DriverBase{
		typ:        typ,
		fieldTypes: make(map[string]FieldType, len(types)),
		dispatcher: event.NewDispatcher(),
	}
	for _, ft := range types {
		d.fieldTypes[ft.Type()] = ft
	}
	return d
}

func (d *DriverBase) Type() string { return d.typ }

// Dispatcher returns the dispatcher of driver events.
func (d *DriverBase) Dispatcher() *event.Dispatcher { return d.dispatcher }

// RegisterFieldType adds or replaces a field type.
func (d *DriverBase) RegisterFieldType(ft FieldType) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fieldTypes[ft.Type()] = ft
}

func (d *DriverBase) HasFieldType(typ string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.fieldTypes[typ]
	return ok
}

func (d *DriverBase) FieldType(typ string) (FieldType, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ft, ok := d.fieldTypes[typ]
	if !ok {
		return nil, fmt.Errorf("%w: %q for driver %q", ErrUnknownFieldType, typ, d.typ)
	}
	return ft, nil
}

// FieldTypes returns the registered type names, sorted.
func (d *DriverBase) FieldTypes() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.fieldTypes))
	for n := range d.fieldTypes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// FieldTypeExtensions returns the field type extensions of every loaded
// driver extension that extend typ, in load order.
func (d *DriverBase) FieldTypeExtensions(typ string) []FieldTypeExtension {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []FieldTypeExtension
	for _, ext := range d.extensions {
		for _, fte := range ext.FieldTypeExtensions() {
			if extendsType(fte.ExtendedFieldTypes(), typ) {
				out = append(out, fte)
			}
		}
	}
	return out
}

// AddExtension loads ext: its field types are registered and its
// subscribers listen to driver events.
func (d *DriverBase) AddExtension(ext DriverExtension) error {
	if !extendsType(ext.ExtendedDriverTypes(), d.typ) {
		return fmt.Errorf("%w: %T does not extend %q", ErrExtensionMismatch, ext, d.typ)
	}
	d.mu.Lock()
	d.extensions = append(d.extensions, ext)
	for _, ft := range ext.FieldTypes() {
		d.fieldTypes[ft.Type()] = ft
	}
	d.mu.Unlock()
	d.dispatcher.AddSubscriber(ext)
	return nil
}

// Execute wraps the concrete result build of drv with DriverPreGetResult
// and DriverPostGetResult. query is handed to pre listeners before build
// runs, so listeners may still modify it.
func (d *DriverBase) Execute(ctx context.Context, drv Driver, fields []*Field, query any,
	build func(ctx context.Context) (Result, error)) (Result, error) {
	ds := DataSourceFromContext(ctx)
	pre := &DriverEvent{DataSource: ds, Driver: drv, Fields: fields, Query: query}
	if err := d.dispatcher.Dispatch(ctx, DriverPreGetResult, pre); err != nil {
		return nil, err
	}
	res, err := build(ctx)
	if err != nil {
		return nil, err
	}
	post := &DriverResultEvent{DataSource: ds, Driver: drv, Fields: fields, Result: res}
	if err := d.dispatcher.Dispatch(ctx, DriverPostGetResult, post); err != nil {
		return nil, err
	}
	return post.Result, nil
}

// DriverFactory creates drivers of one type from options.
type DriverFactory interface {
	DriverType() string
	CreateDriver(opts map[string]any) (Driver, error)
}

// DriverFactoryManager indexes driver factories by driver type.
type DriverFactoryManager struct {
	mu        sync.RWMutex
	factories map[string]DriverFactory
}

func NewDriverFactoryManager(factories ...DriverFactory) *DriverFactoryManager {
	m := &DriverFactoryManager{factories: make(map[string]DriverFactory)}
	for _, f := range factories {
		m.AddFactory(f)
	}
	return m
}

func (m *DriverFactoryManager) AddFactory(f DriverFactory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.factories[f.DriverType()] = f
}

func (m *DriverFactoryManager) HasFactory(typ string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.factories[typ]
	return ok
}

func (m *DriverFactoryManager) Factory(typ string) (DriverFactory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.factories[typ]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, typ)
	}
	return f, nil
}

// Types returns the registered driver types, sorted.
func (m *DriverFactoryManager) Types() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.factories))
	for t := range m.factories {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
