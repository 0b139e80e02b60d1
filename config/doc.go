// Package config loads the application configuration with viper and the
// YAML data source definitions.
package config
