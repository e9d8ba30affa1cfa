// Package config loads and validates prosecheck configuration.
//
// Configuration comes from a TOML file, with environment variables
// overriding selected values. A missing file is not an error; defaults
// apply. The Watcher reloads the file when it changes on disk so a
// long-running session picks up dictionary, rule, and endpoint changes
// without a restart.
package config
