// Package cli provides the interactive betterimg command-line client.
//
// It wires configuration, the account store (local sqlite or the hosted
// record service), the session manager, the credit ledger, the payment
// trigger and an interactive REPL.
//
// Key features:
//   - Register / Login / Logout with a persisted session marker
//   - Credit balance dashboard (status)
//   - Credit top-up through an external checkout (buy / confirm / cancel)
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
