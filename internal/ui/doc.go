// Package ui formats console output for people running the publisher.
//
// Git command events become one-line progress messages tagged with the
// project folder, and run summaries and previews are rendered with lipgloss
// styles bound to the destination writer. Structured telemetry keeps flowing
// through zap loggers.
package ui
