package loader

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
)

// Source is a named byte stream offered to the loader: a file on disk, a dropped file or an
// in-memory upload. Name is checked before Open is ever called.
type Source interface {
	// Name returns the file name used for the extension check and as the asset name.
	Name() string

	// Open returns a reader over the scene bytes. The caller closes it.
	Open() (io.ReadCloser, error)
}

type fileSource struct {
	path string
}

// FileSource returns a Source reading the file at path.
//
// Parameters:
//   - path: the file path
//
// Returns:
//   - Source: the file source
func FileSource(path string) Source {
	return fileSource{path: path}
}

func (s fileSource) Name() string {
	return filepath.Base(s.path)
}

func (s fileSource) Open() (io.ReadCloser, error) {
	return os.Open(s.path)
}

type bytesSource struct {
	name string
	data []byte
}

// BytesSource returns a Source over an in-memory buffer.
//
// Parameters:
//   - name: the file name reported by Name
//   - data: the scene bytes
//
// Returns:
//   - Source: the in-memory source
func BytesSource(name string, data []byte) Source {
	return bytesSource{name: name, data: data}
}

func (s bytesSource) Name() string {
	return s.name
}

func (s bytesSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.data)), nil
}
