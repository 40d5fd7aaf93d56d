// Package config loads, normalizes, and validates clipper configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides such as
// CLIPPER_DATA_DIR, FFMPEG_PATH, and WHISPER_MODEL. The Config type centralizes
// every knob the server, the CLI, and the pipeline stages need so the data
// directory layout and detection thresholds are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
