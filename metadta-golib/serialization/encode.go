package serialization

import (
	"compress/gzip"
	"encoding/gob"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/pippaduckett1/MetaDTA/metadta-golib/errors"
)

// Encode writes the object to the path, using the format specified by the file
// extension, which can be .json or .gob. The path may additionally have a .gz
// suffix, in which case the stream will be compressed.
func Encode(path string, obj interface{}) error {
	enc, err := NewEncoder(path)
	if err != nil {
		return err
	}
	if err := enc.Encode(obj); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// Encoder is an interface that matches gob.Encoder and json.Encoder
type Encoder interface {
	// Encode adds an item to the stream
	Encode(interface{}) error
}

// EncodeCloser is an encoder that can also close its underlying stream
type EncodeCloser struct {
	encoder Encoder
	closers []io.Closer
}

// Encode writes an object to the underlying stream
func (e *EncodeCloser) Encode(x interface{}) error {
	return e.encoder.Encode(x)
}

// Close closes the underlying stream
func (e *EncodeCloser) Close() error {
	var closeErr error
	// We must close in reverse order
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil {
			closeErr = err
		}
	}
	return closeErr
}

// NewEncoder opens the specified path and returns an encoder that writes in the
// format specified by the file extension, which can be .json or .gob. The path
// may additionally have a .gz suffix, in which case the stream will be compressed.
func NewEncoder(path string) (*EncodeCloser, error) {
	var w io.WriteCloser
	w, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	closers := []io.Closer{w}

	ext := path
	if strings.HasSuffix(ext, ".gz") {
		ext = strings.TrimSuffix(ext, ".gz")
		w = gzip.NewWriter(w)
		closers = append(closers, w)
	}

	var e Encoder
	switch {
	case strings.HasSuffix(ext, ".json"):
		e = json.NewEncoder(w)
	case strings.HasSuffix(ext, ".gob"):
		e = gob.NewEncoder(w)
	default:
		return nil, errors.Errorf("could not find encoder for %s", path)
	}

	return &EncodeCloser{
		encoder: e,
		closers: closers,
	}, nil
}
