package pathutils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	tildeSymbolConstant             = "~"
	tildeForwardSlashPrefixConstant = "~/"
)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// Resolver expands home directory shortcuts and produces absolute, cleaned paths.
type Resolver struct {
	homeDirectoryProvider HomeDirectoryProvider
	homeDirectory         string
	homeDirectoryError    error
	initializationGuard   sync.Once
}

// NewResolver constructs a Resolver using the operating system home directory lookup.
func NewResolver() *Resolver {
	return NewResolverWithProvider(os.UserHomeDir)
}

// NewResolverWithProvider constructs a Resolver with a custom home directory provider.
func NewResolverWithProvider(provider HomeDirectoryProvider) *Resolver {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &Resolver{homeDirectoryProvider: provider}
}

// ExpandHome replaces a leading tilde with the user's home directory.
func (resolver *Resolver) ExpandHome(candidatePath string) string {
	if resolver == nil || !strings.HasPrefix(candidatePath, tildeSymbolConstant) {
		return candidatePath
	}

	homeDirectory := resolver.resolveHomeDirectory()
	if len(homeDirectory) == 0 {
		return candidatePath
	}

	if candidatePath == tildeSymbolConstant {
		return homeDirectory
	}

	for _, prefix := range []string{tildeForwardSlashPrefixConstant, tildeSymbolConstant + string(os.PathSeparator)} {
		if strings.HasPrefix(candidatePath, prefix) {
			return filepath.Join(homeDirectory, strings.TrimPrefix(candidatePath, prefix))
		}
	}

	return candidatePath
}

// Absolute trims, expands, and converts the candidate path into a cleaned absolute path.
func (resolver *Resolver) Absolute(candidatePath string) (string, error) {
	expandedPath := resolver.ExpandHome(strings.TrimSpace(candidatePath))
	return filepath.Abs(expandedPath)
}

func (resolver *Resolver) resolveHomeDirectory() string {
	resolver.initializationGuard.Do(func() {
		resolver.homeDirectory, resolver.homeDirectoryError = resolver.homeDirectoryProvider()
	})
	if resolver.homeDirectoryError != nil {
		return ""
	}
	return resolver.homeDirectory
}
