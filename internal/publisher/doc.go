// Package publisher turns a project folder into a hosted repository.
//
// It sanitizes the project title into a repository name, creates the
// repository (appending a suffix on name conflicts), and runs the local git
// sequence that commits the folder and pushes it. Failed pushes rebuild the
// local repository and retry a bounded number of times; credential failures
// stop immediately.
package publisher
