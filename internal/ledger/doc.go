// Package ledger computes crate balances and filters movement lists.
//
// Everything here is a pure function over in-memory snapshots: callers load
// partners, crate types and movements from the store and re-run the engine
// after every change. Balances are never persisted.
package ledger
