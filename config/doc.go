// Package config loads the application configuration from an optional YAML
// file, a .env file and DATAREPO_ prefixed environment variables.
package config
