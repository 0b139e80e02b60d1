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

package configuration

import (
	"context"
	"fmt"
	"sync"

	ds "github.com/tomoncle/datasource"
	"github.com/tomoncle/datasource/config"
	"github.com/tomoncle/datasource/event"
)

// Priority of the PreBindParameters listener; fields must exist before
// other extensions read them.
const Priority = 1024

// Extension adds the fields declared in <dir>/<name>.yml (or .yaml) to a
// data source that has none when parameters are first bound.
type Extension struct {
	dir string

	mu   sync.Mutex
	defs map[string]*config.Definition
}

func New(dir string) *Extension {
	return &Extension{dir: dir, defs: make(map[string]*config.Definition)}
}

func (e *Extension) DriverExtensions() []ds.DriverExtension { return nil }

func (e *Extension) Subscriptions() []event.Subscription {
	return []event.Subscription{
		{Event: ds.PreBindParameters, Priority: Priority, Listener: e.preBind},
	}
}

// Definition returns the definition of the named data source, or nil when
// no file declares it. Parsed files are cached.
func (e *Extension) Definition(name string) (*config.Definition, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if def, ok := e.defs[name]; ok {
		return def, nil
	}
	path, ok := config.FindDefinition(e.dir, name)
	if !ok {
		e.defs[name] = nil
		return nil, nil
	}
	def, err := config.LoadDefinition(path)
	if err != nil {
		return nil, err
	}
	e.defs[name] = def
	return def, nil
}

func (e *Extension) preBind(_ context.Context, evt any) error {
	source := evt.(*ds.ParametersEvent).DataSource
	if len(source.Fields()) > 0 {
		return nil
	}
	def, err := e.Definition(source.Name())
	if err != nil || def == nil {
		return err
	}
	return Apply(source, def)
}

// Apply adds the fields of def to source in declaration order and sets
// its max results when source has none.
func Apply(source *ds.DataSource, def *config.Definition) error {
	for _, fd := range def.Fields {
		if _, err := source.AddField(fd.Name, fd.Type, fd.Comparison, fd.Options); err != nil {
			return fmt.Errorf("definition %s: %w", def.Name, err)
		}
	}
	if def.MaxResults > 0 && source.MaxResults() == 0 {
		source.SetMaxResults(def.MaxResults)
	}
	ds.GetLogger().Debug("Data source configured", "name", source.Name(), "fields", len(def.Fields))
	return nil
}
