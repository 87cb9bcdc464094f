package interfaces

import "context"

// Storage is the file-backed key-value surface consumed by the reflection
// store. Paths are slash-separated and relative to the adapter's root.
type Storage interface {
	// Exists reports whether a file or folder exists at path
	Exists(ctx context.Context, path string) (bool, error)

	// Read returns the contents of the file at path. Fails if absent.
	Read(ctx context.Context, path string) ([]byte, error)

	// Write stores data at path, replacing any previous contents
	Write(ctx context.Context, path string, data []byte) error

	// CreateFolder creates the folder at path, including missing parents
	CreateFolder(ctx context.Context, path string) error
}
