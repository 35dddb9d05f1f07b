package ocfmeta

import (
	"fmt"

	"github.com/pkg/errors"
)

var magic = []byte{'O', 'b', 'j', 1}

const (
	syncLength = 16

	// object count + block size (one byte each) + at least one payload byte + sync marker
	minBlockLen = 2 + 1 + syncLength

	metaCodec  = "avro.codec"
	metaSchema = "avro.schema"
)

// DefaultMaxSchemaDepth is the default nesting limit of the schema parser.
const DefaultMaxSchemaDepth = 32

var (
	// ErrBadMagic is returned when the buffer does not start with the container magic.
	ErrBadMagic = errors.New("ocfmeta: bad magic byte sequence")
	// ErrTruncated is returned when a header read runs past the end of the buffer.
	ErrTruncated = errors.New("ocfmeta: unexpected end of data")
	// ErrCorrupt is returned for malformed varints and negative lengths.
	ErrCorrupt = errors.New("ocfmeta: corrupt data")
	// ErrSchema is returned (wrapped) when the embedded schema cannot be parsed.
	ErrSchema = errors.New("ocfmeta: invalid schema")
	// ErrEmptySchema is returned by the writer when no schema was given.
	ErrEmptySchema = errors.New("ocfmeta: empty schema")
)

var (
	errClosed = errors.New("ocfmeta: is closed")
)

// --------------------------------------------------------------------

// Compression is the block compression codec.
type Compression byte

func (c Compression) isValid() bool {
	return c >= NullCompression && c < unknownCompression
}

// String returns the codec name as stored under the avro.codec key.
func (c Compression) String() string {
	switch c {
	case NullCompression:
		return "null"
	case DeflateCompression:
		return "deflate"
	case SnappyCompression:
		return "snappy"
	case ZstandardCompression:
		return "zstandard"
	}
	return fmt.Sprintf("Compression(%d)", byte(c))
}

// Supported compression codecs
const (
	NullCompression Compression = iota
	DeflateCompression
	SnappyCompression
	ZstandardCompression
	unknownCompression
)

// ParseCompression maps a codec name to a Compression. An empty name
// is the same as "null".
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "", "null":
		return NullCompression, nil
	case "deflate":
		return DeflateCompression, nil
	case "snappy":
		return SnappyCompression, nil
	case "zstandard":
		return ZstandardCompression, nil
	}
	return unknownCompression, errors.Errorf("ocfmeta: unsupported codec %q", name)
}
