// Package cli implements the dsquery commands.
package cli
