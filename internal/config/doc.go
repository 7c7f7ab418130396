// Package config loads and validates taketake's TOML configuration.
//
// Load resolves a config file (explicit path, ./taketake.toml, then
// ~/.config/taketake/config.toml), decodes it onto Default(), expands and
// normalizes path fields, and validates the result. Prefer Load over
// hand-rolled TOML decoding so every entry point shares the same defaults
// and path-expansion rules.
package config
