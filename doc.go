// Package datasource binds request parameters to query back ends.
//
// A DataSource owns an ordered list of fields. Each field has a type
// provided by the data source's Driver and one comparison. Binding
// parameters of the form
//
//	{"news": {"fields": {"title": "go"}, "page": 2, "sort": "-created_at"}}
//
// sets the value of each field; Result asks the driver for the matching
// items and CreateView builds a read-only View for presentation.
//
// Three drivers ship with the module: driver/orm on bun, driver/dbal on
// squirrel and sqlx, and driver/collection for in-memory slices.
// Extensions such as extension/pagination and extension/ordering hook
// into the events fired along the way.
package datasource
