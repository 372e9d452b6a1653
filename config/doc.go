// Package config loads and validates the server configuration.
//
// Precedence from lowest to highest: built-in defaults, config file(s),
// COLLAGERY_* environment variables, CLI flags. The loaded struct is threaded
// into constructors explicitly; business logic never reads the environment.
package config
