// Package config loads, normalizes, and validates ctcseg configuration data.
//
// It supplies defaults matching the classic CTC segmentation tooling, expands
// user paths (including tilde shortcuts), reads TOML files, and honours
// environment fallbacks such as CTCSEG_BACKEND. The Config type centralizes
// every knob the CLI and batch orchestrator need: vocabulary, alignment mode,
// scoring window, backend command, and worker pool sizing.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, a resolved vocabulary, and clear validation errors.
package config
