// Package cli provides the interactive invoicekeeper command-line client.
//
// It wires configuration, the local session database, the backend client,
// the invoice sync engine and an interactive REPL. Typical flow: restore the
// stored session and confirm it with the backend, start polling invoices when
// signed in, then execute user commands until exit.
//
// Key features:
//   - Register / Login / Logout
//   - List and search the cached invoices, show one by id, stats
//   - Add an invoice, optionally with a staged attachment
//   - Delete by id, manual sync, metrics dump
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
