// Package config loads and merges leakshield configuration from multiple
// sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (LEAKSHIELD_FORMAT, LEAKSHIELD_FAIL_ON,
//     LEAKSHIELD_NER_RECOGNIZER, etc.)
//  3. Config file ($XDG_CONFIG_HOME/leakshield/config.yaml)
//  4. Built-in defaults
//
// Merging is done with viper. [Save] and [LoadFile] read and write the YAML
// file directly for `leakshield config init|set`, and [SetField] validates
// and applies a single key.
package config
