// Package dbal implements the "dbal" driver: squirrel select builders
// executed through sqlx, returning rows as map[string]any.
package dbal
