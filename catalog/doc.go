// Package catalog builds data sources from YAML definitions on top of the
// configured database connection.
package catalog
