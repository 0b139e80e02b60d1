// Package orm implements the "orm" driver on bun select queries. Field
// values become WHERE (or HAVING) conditions on the model's table and
// results are slices of model pointers.
package orm
