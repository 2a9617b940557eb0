package serialization

import (
	"compress/gzip"
	"encoding/gob"
	"encoding/json"
	"io"
	"strings"

	"github.com/pippaduckett1/MetaDTA/metadta-golib/errors"
	"github.com/pippaduckett1/MetaDTA/metadta-golib/fileutil"
)

// Decoder is an interface that matches gob.Decoder and json.Decoder
type Decoder interface {
	// Decode extracts an object from the stream
	Decode(interface{}) error
}

// Decode loads an object from a local or remote path. If the path ends with
// .gz the contents are decompressed; the encoding is then determined by the
// remaining extension, which can be .json or .gob. The object is decoded into
// the provided pointer.
func Decode(path string, obj interface{}) error {
	r, err := fileutil.NewReader(path)
	if err != nil {
		return errors.Wrapf(err, "error loading %s", path)
	}
	defer r.Close()
	return DecodeFrom(r, path, obj)
}

// DecodeFrom is like Decode but reads from the given reader, using the
// provided path only to determine the compression and encoding.
func DecodeFrom(r io.Reader, path string, obj interface{}) error {
	d, closer, err := newDecoder(r, path)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}
	if err := d.Decode(obj); err != nil {
		return errors.Wrapf(err, "error decoding %s", path)
	}
	return nil
}

func newDecoder(r io.Reader, path string) (Decoder, io.Closer, error) {
	inpath := path
	var closer io.Closer
	if strings.HasSuffix(path, ".gz") {
		path = strings.TrimSuffix(path, ".gz")
		rd, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "error loading %s", inpath)
		}
		closer = rd
		r = rd
	}

	switch {
	case strings.HasSuffix(path, ".json"):
		return json.NewDecoder(r), closer, nil
	case strings.HasSuffix(path, ".gob"):
		return gob.NewDecoder(r), closer, nil
	}
	return nil, closer, errors.Errorf("could not find decoder for %s", inpath)
}
