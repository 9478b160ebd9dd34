// Package githubapi wraps the go-github REST client for the two calls the
// publisher needs: creating a repository for the authenticated user and
// resolving that user's login. Response statuses are mapped into typed
// outcomes so name conflicts and rejected credentials can be told apart.
package githubapi
