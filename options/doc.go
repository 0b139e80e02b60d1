// Package options resolves option maps for drivers and fields: declared
// defaults, required keys, allowed values and kinds, and normalizers.
package options
