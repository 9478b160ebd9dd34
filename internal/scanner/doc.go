// Package scanner discovers numbered student project directories that contain
// source files and have not yet been recorded as published.
package scanner
