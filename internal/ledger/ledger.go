package ledger

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/temirov/studentpub/internal/filesystem"
)

const (
	ledgerFilePermissionsConstant     = 0o644
	lineSeparatorConstant             = "\n"
	missingFilePathMessageConstant    = "ledger file path not provided"
	missingFileSystemMessageConstant  = "ledger filesystem not configured"
	readLedgerErrorTemplateConstant   = "unable to read ledger %s: %w"
	appendLedgerErrorTemplateConstant = "unable to append %s to ledger %s: %w"
	emptyEntryMessageConstant         = "ledger entry must not be empty"
)

var (
	// ErrFilePathMissing indicates the ledger was opened without a file path.
	ErrFilePathMissing = errors.New(missingFilePathMessageConstant)
	// ErrFileSystemMissing indicates the ledger was opened without a filesystem.
	ErrFileSystemMissing = errors.New(missingFileSystemMessageConstant)
	// ErrEmptyEntry indicates an attempt to record a blank path.
	ErrEmptyEntry = errors.New(emptyEntryMessageConstant)
)

// Ledger is the append-only record of project directories that were already published.
type Ledger struct {
	fileSystem filesystem.FileSystem
	filePath   string
	entries    map[string]struct{}
	ordered    []string
}

// Load reads the ledger at filePath. A missing file yields an empty ledger.
func Load(fileSystem filesystem.FileSystem, filePath string) (*Ledger, error) {
	if fileSystem == nil {
		return nil, ErrFileSystemMissing
	}
	trimmedFilePath := strings.TrimSpace(filePath)
	if len(trimmedFilePath) == 0 {
		return nil, ErrFilePathMissing
	}

	ledger := &Ledger{
		fileSystem: fileSystem,
		filePath:   trimmedFilePath,
		entries:    make(map[string]struct{}),
	}

	contents, readError := fileSystem.ReadFile(trimmedFilePath)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return ledger, nil
		}
		return nil, fmt.Errorf(readLedgerErrorTemplateConstant, trimmedFilePath, readError)
	}

	for _, line := range strings.Split(string(contents), lineSeparatorConstant) {
		ledger.remember(line)
	}
	return ledger, nil
}

// FilePath reports where the ledger is persisted.
func (ledger *Ledger) FilePath() string {
	return ledger.filePath
}

// Contains reports whether the project path has already been published.
func (ledger *Ledger) Contains(projectPath string) bool {
	normalizedPath := normalizeEntry(projectPath)
	if len(normalizedPath) == 0 {
		return false
	}
	_, exists := ledger.entries[normalizedPath]
	return exists
}

// Size returns the number of distinct recorded projects.
func (ledger *Ledger) Size() int {
	return len(ledger.entries)
}

// Entries returns the recorded projects in the order they were first seen.
func (ledger *Ledger) Entries() []string {
	return append([]string(nil), ledger.ordered...)
}

// Append durably records a project path. Recording an existing path is a no-op.
func (ledger *Ledger) Append(projectPath string) error {
	normalizedPath := normalizeEntry(projectPath)
	if len(normalizedPath) == 0 {
		return ErrEmptyEntry
	}
	if ledger.Contains(normalizedPath) {
		return nil
	}

	appendError := ledger.fileSystem.AppendFile(ledger.filePath, []byte(normalizedPath+lineSeparatorConstant), ledgerFilePermissionsConstant)
	if appendError != nil {
		return fmt.Errorf(appendLedgerErrorTemplateConstant, normalizedPath, ledger.filePath, appendError)
	}
	ledger.remember(normalizedPath)
	return nil
}

func (ledger *Ledger) remember(rawEntry string) {
	normalizedPath := normalizeEntry(rawEntry)
	if len(normalizedPath) == 0 {
		return
	}
	if _, exists := ledger.entries[normalizedPath]; exists {
		return
	}
	ledger.entries[normalizedPath] = struct{}{}
	ledger.ordered = append(ledger.ordered, normalizedPath)
}

func normalizeEntry(rawEntry string) string {
	trimmedEntry := strings.TrimSpace(rawEntry)
	if len(trimmedEntry) == 0 {
		return ""
	}
	return filepath.Clean(trimmedEntry)
}
