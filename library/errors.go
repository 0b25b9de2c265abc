package library

import "fmt"

type VersionError struct {
	Path    string
	Version int
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("%s: unsupported library version %d", e.Path, e.Version)
}
