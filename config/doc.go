// Package config loads application configuration for restclient users.
//
// LoadConfig reads a YAML file with Viper, loads an optional .env file with
// godotenv, and lets environment variables override file values:
//
//	var cfg restclient.ClientsConfig
//	if err := config.LoadConfig("orders", &cfg); err != nil { ... }
//
// Validate checks `validate` struct tags with go-playground/validator and
// reports failures as an INVALID_INPUT error.
package config
