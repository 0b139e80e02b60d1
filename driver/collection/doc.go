// Package collection implements the "collection" driver, which filters
// and sorts an in-memory slice of maps or structs.
package collection
