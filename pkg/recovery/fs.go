package recovery

import "os"

// FileSystem is the set of file operations cleanup performs
type FileSystem interface {
	ReadDir(path string) ([]os.DirEntry, error)
	Remove(path string) error
	Chmod(path string, mode os.FileMode) error
}

type osFS struct{}

func (osFS) ReadDir(path string) ([]os.DirEntry, error) { return os.ReadDir(path) }
func (osFS) Remove(path string) error                   { return os.Remove(path) }
func (osFS) Chmod(path string, mode os.FileMode) error  { return os.Chmod(path, mode) }
