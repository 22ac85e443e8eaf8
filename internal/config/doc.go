// Package config defines the application configuration structures and
// loading logic. Configuration is sourced from environment variables with
// the TASKWELL_ prefix and an optional config.yaml file, with environment
// variables taking precedence.
package config
