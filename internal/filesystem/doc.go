// Package filesystem exposes the small filesystem surface shared by the ledger,
// the pipeline and the publisher so tests can substitute in-memory fakes.
package filesystem
