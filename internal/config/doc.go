// Package config loads, normalizes, and validates printdoctor configuration data.
//
// It supplies defaults rooted in the XDG base directories, expands user paths
// (including tilde shortcuts), reads TOML files, and honours environment
// fallbacks such as CUPS_SERVER. The Config type centralizes every knob the
// troubleshooter and CLI need: where the print server lives, how the
// conformance checker is invoked, where driver programs are searched for, and
// how PackageKit is reached.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
