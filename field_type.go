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

import "github.com/tomoncle/datasource/options"

// OptionField is defined for every field and maps it to a column,
// property path or map key. It defaults to the field name.
const OptionField = "field"

// FieldType declares the comparisons and options of one scalar kind.
// Drivers extend it with the method that turns a bound field into a
// back-end predicate.
type FieldType interface {
	Type() string
	Comparisons() []string
	DefineOptions(r *options.Resolver)
}

// BaseFieldType implements FieldType for embedding.
type BaseFieldType struct {
	name        string
	comparisons []string
}

// NewBaseFieldType returns a field type named name allowing comparisons.
func NewBaseFieldType(name string, comparisons ...string) BaseFieldType {
	return BaseFieldType{name: name, comparisons: comparisons}
}

func (t BaseFieldType) Type() string { return t.name }

func (t BaseFieldType) Comparisons() []string {
	out := make([]string, len(t.comparisons))
	copy(out, t.comparisons)
	return out
}

func (t BaseFieldType) DefineOptions(*options.Resolver) {}

// AllowsComparison reports whether ft declares comparison.
func AllowsComparison(ft FieldType, comparison string) bool {
	for _, c := range ft.Comparisons() {
		if c == comparison {
			return true
		}
	}
	return false
}

// Any matches every driver type or field type in extension declarations.
const Any = "*"

func extendsType(declared []string, typ string) bool {
	for _, d := range declared {
		if d == Any || d == typ {
			return true
		}
	}
	return false
}
