// Package cli constructs the studentpub command-line interface: the Cobra
// command hierarchy, configuration loading with embedded defaults, structured
// logging, and the wiring of scanning, README generation and publication
// services behind the publish and scan commands.
package cli
