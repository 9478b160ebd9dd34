// Package classifier tags project files as sketch sources, general sources,
// documentation or other, and decides which source files describe a project.
package classifier
