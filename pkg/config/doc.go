// Package config loads application configuration from ODSK_* environment
// variables, plus an optional YAML policy file for record mutation rules.
package config
