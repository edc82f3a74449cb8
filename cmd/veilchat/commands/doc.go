// Package commands defines the veilchat CLI and wires dependencies for
// subcommands.
//
// Commands
//
//   - init         Create or replace the local key pair
//   - fingerprint  Print the local key fingerprint
//   - contact      Add and list contacts
//   - send         Encrypt and send a message
//   - sync         Run a reconciliation pass for one chat
//
// # Implementation
//
// The root command binds flags through viper and builds the dependency
// graph (stores, keystore, crypto engine, reconciliation engine) before any
// subcommand runs, so handlers share one app context.
package commands
