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
	"github.com/tomoncle/datasource/event"
	"github.com/tomoncle/datasource/options"
)

// Extension subscribes to data source events and contributes driver
// extensions to the drivers it is loaded into.
type Extension interface {
	event.Subscriber
	DriverExtensions() []DriverExtension
}

// DriverExtension contributes field types, field type extensions and
// driver event listeners. ExtendedDriverTypes may contain Any.
type DriverExtension interface {
	event.Subscriber
	ExtendedDriverTypes() []string
	FieldTypes() []FieldType
	FieldTypeExtensions() []FieldTypeExtension
}

// FieldTypeExtension adds options and field event listeners to the field
// types it extends. ExtendedFieldTypes may contain Any.
type FieldTypeExtension interface {
	event.Subscriber
	ExtendedFieldTypes() []string
	DefineOptions(r *options.Resolver)
}

// ExtensionBase implements Extension with no behaviour, for embedding.
type ExtensionBase struct{}

func (ExtensionBase) Subscriptions() []event.Subscription { return nil }
func (ExtensionBase) DriverExtensions() []DriverExtension { return nil }
