// Package readme builds README prompts from project sources, requests them
// from a completion API under a bounded retry policy, and extracts the
// README body and project title from the model response.
package readme
