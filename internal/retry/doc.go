// Package retry runs fallible operations under a bounded attempt budget.
// Delays between attempts follow a cenkalti/backoff exponential schedule and
// are slept through an injectable Sleeper; failures wrapped with Permanent end
// the run at once.
package retry
