// Package config manages uprebase settings.
//
// Settings come from, in order of precedence:
//   - Command line flags
//   - UPREBASE_* environment variables
//   - The config file ($HOME/.uprebase.yaml or --config)
//   - Built-in defaults
package config
