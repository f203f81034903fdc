// Package cli defines the Cobra command tree for the nextjs-starter CLI. Each
// file in this package builds one top-level command (new, doctor, config,
// version) and attaches it to the root command. Commands delegate to internal
// packages for the work and only handle flag parsing, output formatting and
// exit codes.
package cli
