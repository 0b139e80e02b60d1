// Package repository gives typed access to one bun model: seeding writes
// and pages read through orm data sources.
package repository
