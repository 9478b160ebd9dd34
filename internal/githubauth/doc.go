// Package githubauth resolves GitHub credentials from the process environment
// and from variables loaded out of a .env file.
package githubauth
