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
	"sync"
)

// Factory creates named data sources and hands its extensions to each.
// Parameters of sibling data sources are shared through it so views can
// build links that keep the state of the others.
type Factory struct {
	mu         sync.RWMutex
	drivers    *DriverFactoryManager
	extensions []Extension
	sources    map[string]*DataSource
	order      []string
}

func NewFactory(drivers *DriverFactoryManager, extensions ...Extension) *Factory {
	if drivers == nil {
		drivers = NewDriverFactoryManager()
	}
	return &Factory{
		drivers:    drivers,
		extensions: extensions,
		sources:    make(map[string]*DataSource),
	}
}

// Drivers returns the driver factory manager.
func (f *Factory) Drivers() *DriverFactoryManager { return f.drivers }

// AddExtension registers ext for data sources created afterwards.
func (f *Factory) AddExtension(ext Extension) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.extensions = append(f.extensions, ext)
}

func (f *Factory) Extensions() []Extension {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]Extension, len(f.extensions))
	copy(out, f.extensions)
	return out
}

// CreateDataSource creates a data source on a new driver of type
// driverType. An empty name defaults to DefaultName.
func (f *Factory) CreateDataSource(driverType string, opts map[string]any, name string) (*DataSource, error) {
	if name == "" {
		name = DefaultName
	}
	f.mu.RLock()
	_, exists := f.sources[name]
	f.mu.RUnlock()
	if exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}

	df, err := f.drivers.Factory(driverType)
	if err != nil {
		return nil, err
	}
	drv, err := df.CreateDriver(opts)
	if err != nil {
		return nil, fmt.Errorf("create %s driver for %q: %w", driverType, name, err)
	}
	ds, err := New(name, drv)
	if err != nil {
		return nil, err
	}
	for _, ext := range f.Extensions() {
		if err := ds.AddExtension(ext); err != nil {
			return nil, err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.sources[name]; exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	ds.SetFactory(f)
	f.sources[name] = ds
	f.order = append(f.order, name)
	GetLogger().Debug("data source created", "datasource", name, "driver", driverType)
	return ds, nil
}

func (f *Factory) HasDataSource(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.sources[name]
	return ok
}

func (f *Factory) DataSource(name string) (*DataSource, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	ds, ok := f.sources[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDataSource, name)
	}
	return ds, nil
}

// DataSources returns the data sources in creation order.
func (f *Factory) DataSources() []*DataSource {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]*DataSource, 0, len(f.order))
	for _, name := range f.order {
		out = append(out, f.sources[name])
	}
	return out
}

// AllParameters merges the parameters of every data source.
func (f *Factory) AllParameters(ctx context.Context) (Parameters, error) {
	return f.collectParameters(ctx, nil)
}

// OtherParameters merges the parameters of every data source but except.
func (f *Factory) OtherParameters(ctx context.Context, except *DataSource) (Parameters, error) {
	return f.collectParameters(ctx, except)
}

func (f *Factory) collectParameters(ctx context.Context, except *DataSource) (Parameters, error) {
	out := Parameters{}
	for _, ds := range f.DataSources() {
		if ds == except {
			continue
		}
		params, err := ds.Parameters(ctx)
		if err != nil {
			return nil, err
		}
		out.Merge(params)
	}
	return out, nil
}
