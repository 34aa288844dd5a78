// Package fsio provides small filesystem abstractions so that readers and
// writers can be swapped for in-memory implementations in tests.
package fsio

import (
	"fmt"
	"io"
	"os"
)

// FileReader abstracts opening files to allow testing over in-memory or
// alternate backends.
type FileReader interface {
	Open(name string) (io.ReadCloser, error)
}

// OSFileReader implements FileReader using the real os package.
type OSFileReader struct{}

// Open opens a file from disk.
func (OSFileReader) Open(name string) (io.ReadCloser, error) {
	return os.Open(name)
}

// FileWriter allows injecting file writers for testing or alternate outputs.
type FileWriter interface {
	Create(name string) (io.WriteCloser, error)
}

// OSFileWriter implements FileWriter using the real filesystem.
type OSFileWriter struct{}

// Create opens a file for writing on the local filesystem.
func (OSFileWriter) Create(name string) (io.WriteCloser, error) {
	return os.Create(name)
}

// SafeClose closes the provided io.Closer and logs a warning to stderr if it
// fails. It's safe to use in deferred statements for readers and writers.
func SafeClose(c io.Closer, context string) {
	if err := c.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: closing %s: %v\n", context, err)
	}
}
