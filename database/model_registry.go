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

package database

import (
	"fmt"
	"sort"
	"sync"
)

var defaultRegistry = NewModelRegistry()

// Model is a Bun model registered under a name. Definitions refer to
// models by this name; Priority orders table creation (lower first).
type Model struct {
	Name     string
	Instance interface{}
	Priority int
}

// ModelRegistry stores models by name and lists them in a deterministic
// order.
type ModelRegistry struct {
	mutex  sync.RWMutex
	models map[string]Model
}

// NewModelRegistry returns an empty registry.
func NewModelRegistry() *ModelRegistry {
	return &ModelRegistry{models: make(map[string]Model)}
}

// Register adds a model; names must be unique.
func (r *ModelRegistry) Register(name string, instance interface{}, priority int) error {
	if name == "" || instance == nil {
		return fmt.Errorf("model name and instance are required")
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, ok := r.models[name]; ok {
		return fmt.Errorf("model %q already registered", name)
	}
	r.models[name] = Model{Name: name, Instance: instance, Priority: priority}
	return nil
}

// Lookup returns the instance registered under name.
func (r *ModelRegistry) Lookup(name string) (interface{}, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	m, ok := r.models[name]
	return m.Instance, ok
}

// Models returns the models by ascending priority, then name.
func (r *ModelRegistry) Models() []Model {
	r.mutex.RLock()
	result := make([]Model, 0, len(r.models))
	for _, m := range r.models {
		result = append(result, m)
	}
	r.mutex.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].Priority != result[j].Priority {
			return result[i].Priority < result[j].Priority
		}
		return result[i].Name < result[j].Name
	})
	return result
}

// RegisterModel adds a model to the default registry.
func RegisterModel(name string, instance interface{}, priority int) error {
	return defaultRegistry.Register(name, instance, priority)
}

// LookupModel finds a model of the default registry.
func LookupModel(name string) (interface{}, bool) {
	return defaultRegistry.Lookup(name)
}

// RegisteredModels lists the models of the default registry.
func RegisteredModels() []Model {
	return defaultRegistry.Models()
}

// RegisteredModelInstances lists the instances of the default registry.
func RegisteredModelInstances() []interface{} {
	models := RegisteredModels()
	instances := make([]interface{}, len(models))
	for i, m := range models {
		instances[i] = m.Instance
	}
	return instances
}
