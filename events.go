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

import "github.com/tomoncle/datasource/event"

// Data source events.
const (
	PreBindParameters  = "datasource.pre_bind_parameters"
	PostBindParameters = "datasource.post_bind_parameters"
	PreGetResult       = "datasource.pre_get_result"
	PostGetResult      = "datasource.post_get_result"
	PreBuildView       = "datasource.pre_build_view"
	PostBuildView      = "datasource.post_build_view"
	PostGetParameters  = "datasource.post_get_parameters"
)

// Field events, dispatched on the field's own dispatcher.
const (
	FieldPreBindParameter  = "field.pre_bind_parameter"
	FieldPostBindParameter = "field.post_bind_parameter"
	FieldPostGetParameter  = "field.post_get_parameter"
	FieldPostBuildView     = "field.post_build_view"
)

// Driver events, dispatched on the driver's dispatcher.
const (
	DriverPreGetResult  = "driver.pre_get_result"
	DriverPostGetResult = "driver.post_get_result"
)

// DataSourceEvent is dispatched for PreGetResult and PreBuildView.
type DataSourceEvent struct {
	event.Propagation
	DataSource *DataSource
}

// ParametersEvent carries parameters listeners may rewrite.
type ParametersEvent struct {
	event.Propagation
	DataSource *DataSource
	Parameters Parameters
}

// ResultEvent is dispatched after the driver returned. Listeners may
// replace Result.
type ResultEvent struct {
	event.Propagation
	DataSource *DataSource
	Result     Result
}

// ViewEvent is dispatched once the view holds every field view.
type ViewEvent struct {
	event.Propagation
	DataSource *DataSource
	View       *View
}

// FieldEvent carries the raw value bound to a field. Pre-bind listeners
// may rewrite Value.
type FieldEvent struct {
	event.Propagation
	Field *Field
	Value any
}

// FieldParametersEvent carries the parameters one field contributes.
type FieldParametersEvent struct {
	event.Propagation
	Field      *Field
	Parameters Parameters
}

// FieldViewEvent is dispatched after a field view was built.
type FieldViewEvent struct {
	event.Propagation
	Field *Field
	View  *FieldView
}

// DriverEvent is dispatched before the driver runs its query. Query is
// the driver specific query object, for example *bun.SelectQuery.
type DriverEvent struct {
	event.Propagation
	DataSource *DataSource
	Driver     Driver
	Fields     []*Field
	Query      any
}

// DriverResultEvent is dispatched after the driver built its result.
type DriverResultEvent struct {
	event.Propagation
	DataSource *DataSource
	Driver     Driver
	Fields     []*Field
	Result     Result
}
