// Package main hosts the printdoctor CLI entrypoint and command graph.
//
// The Cobra-based command tree runs the "Check PPD sanity" troubleshooter
// against a print queue, inspects local PPD files, maintains the package
// lookup cache and reports on the environment. It centralizes configuration
// resolution, session ids and structured logging setup so subcommands can
// focus on output instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
