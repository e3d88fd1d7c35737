package pipeline

import "errors"

var (
	// ErrDirectoryNotFound means the input directory does not exist
	ErrDirectoryNotFound = errors.New("directory not found")

	// ErrNoDocuments means no file in the directory could be loaded
	ErrNoDocuments = errors.New("no usable documents")
)
