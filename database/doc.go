// Package database manages the SQL connection shared by the orm and dbal
// drivers: Bun and sqlx handles over one pool, named model registration,
// SQL fixtures, error classification and health checks.
package database
