// Package pipeline orchestrates a publication run: it loads the ledger, scans
// for pending projects and, for each one in turn, selects its files, writes a
// generated README, publishes the folder and records it as pushed.
package pipeline
