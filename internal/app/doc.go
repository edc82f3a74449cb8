// Package app wires application dependencies for the CLI.
//
// It builds the concrete stores, crypto engine and reconciliation engine
// from Config, exposing them via the Wire struct for commands to use.
package app
