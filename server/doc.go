// Package server serves the data source catalog as a JSON HTTP API.
package server
