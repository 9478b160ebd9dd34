package filesystem

import (
	"io/fs"
	"os"
	"path/filepath"
)

const appendFileFlagsConstant = os.O_APPEND | os.O_CREATE | os.O_WRONLY

// FileSystem abstracts the filesystem operations used while preparing and publishing projects.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	Abs(path string) (string, error)
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, permissions fs.FileMode) error
	AppendFile(path string, data []byte, permissions fs.FileMode) error
	Remove(path string) error
	RemoveAll(path string) error
}

// OSFileSystem implements FileSystem using the operating system primitives.
type OSFileSystem struct{}

// Stat retrieves file metadata.
func (OSFileSystem) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// Abs resolves an absolute path.
func (OSFileSystem) Abs(path string) (string, error) {
	return filepath.Abs(path)
}

// ReadFile reads file contents.
func (OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile writes data to a file with the supplied permissions.
func (OSFileSystem) WriteFile(path string, data []byte, permissions fs.FileMode) error {
	return os.WriteFile(path, data, permissions)
}

// AppendFile appends data to a file, creating it with the supplied permissions when absent.
func (OSFileSystem) AppendFile(path string, data []byte, permissions fs.FileMode) error {
	file, openError := os.OpenFile(path, appendFileFlagsConstant, permissions)
	if openError != nil {
		return openError
	}
	if _, writeError := file.Write(data); writeError != nil {
		_ = file.Close()
		return writeError
	}
	return file.Close()
}

// Remove deletes a single file or empty directory.
func (OSFileSystem) Remove(path string) error {
	return os.Remove(path)
}

// RemoveAll deletes a path and any children it contains.
func (OSFileSystem) RemoveAll(path string) error {
	return os.RemoveAll(path)
}
