// Package ordering sorts data source results by the "sort" parameter
// and the default_sort options of fields.
package ordering
