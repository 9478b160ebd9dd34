// Package completion adapts an OpenAI-compatible chat completion API for
// single-prompt README generation and classifies its failures.
package completion
