// Package ledger persists the newline-delimited list of project directories
// that were already published so later runs skip them.
package ledger
