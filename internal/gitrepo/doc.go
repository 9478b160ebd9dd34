// Package gitrepo builds git remote URLs for repositories created on the
// hosting service, in either HTTPS or SSH form.
package gitrepo
