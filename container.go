package ocfmeta

import (
	"math"

	"github.com/pkg/errors"
)

// ParseOptions define parser specific options.
type ParseOptions struct {
	// MaxRows stops block indexing once this many rows were indexed.
	// Default: unlimited.
	MaxRows int64

	// FirstRow is the number of leading rows to skip. Blocks that end
	// before FirstRow are not indexed at all.
	// Default: 0.
	FirstRow int64

	// MaxSchemaDepth limits the bracket nesting of the embedded schema.
	// Default: 32.
	MaxSchemaDepth int
}

func (o *ParseOptions) norm() *ParseOptions {
	var oo ParseOptions
	if o != nil {
		oo = *o
	}

	if oo.MaxRows < 1 {
		oo.MaxRows = math.MaxInt64
	}
	if oo.FirstRow < 0 {
		oo.FirstRow = 0
	}
	if oo.MaxSchemaDepth < 1 {
		oo.MaxSchemaDepth = DefaultMaxSchemaDepth
	}

	return &oo
}

// FileMetadata is the parsed header and block index of a container file.
type FileMetadata struct {
	Codec        string            // compression codec, empty for uncompressed
	Schema       Schema            // parsed schema tree
	UserMetadata map[string]string // all other header metadata
	SyncMarker   [syncLength]byte

	HeaderSize   int64 // offset of the first block
	SkipRows     int64 // rows to discard from the first indexed block
	MaxBlockSize int64 // the largest indexed block payload
	NumRows      int64 // indexed rows, after skipping
	Blocks       []BlockInfo
}

// BlockInfo describes an indexed block.
type BlockInfo struct {
	EndOffset      int64 // offset just past the block's sync marker
	CumulativeRows int64 // rows up to and including this block, after skipping
	NumRows        int64 // the number of objects in the block
}

// Parse parses the header of a container file held in data and builds a
// block index. Only bad magic, a truncated/corrupt header or an invalid
// schema are reported as errors; a short or damaged block sequence simply
// ends the index.
func Parse(data []byte, o *ParseOptions) (*FileMetadata, error) {
	o = o.norm()
	c := &cursor{buf: data}

	if err := readMagic(c); err != nil {
		return nil, err
	}

	md := &FileMetadata{UserMetadata: make(map[string]string)}
	if err := readHeader(c, md, o.MaxSchemaDepth); err != nil {
		if errors.Is(err, ErrSchema) {
			return nil, err
		}
		return nil, errors.Wrap(err, "ocfmeta: bad header")
	}

	readBlocks(c, md, o.MaxRows, o.FirstRow)
	return md, nil
}

func readMagic(c *cursor) error {
	for i := range magic {
		b, err := c.readByte()
		if err != nil || b != magic[i] {
			return ErrBadMagic
		}
	}
	return nil
}

func readHeader(c *cursor, md *FileMetadata, maxDepth int) error {
	for {
		n, err := c.varint()
		if err != nil {
			return err
		}
		if n == 0 {
			break
		}
		if n < 0 { // block-map encoding, followed by the byte size
			n = -n
			if _, err := c.varint(); err != nil {
				return err
			}
		}

		for i := int64(0); i < n; i++ {
			key, err := c.str()
			if err != nil {
				return err
			}
			val, err := c.str()
			if err != nil {
				return err
			}

			switch key {
			case metaCodec:
				md.Codec = val
			case metaSchema:
				if md.Schema, err = parseSchema(val, maxDepth); err != nil {
					return err
				}
			default:
				md.UserMetadata[key] = val
			}
		}
	}

	sync, err := c.read(syncLength)
	if err != nil {
		return err
	}
	copy(md.SyncMarker[:], sync)
	md.HeaderSize = int64(c.pos())
	return nil
}

func readBlocks(c *cursor, md *FileMetadata, maxRows, skip int64) {
	var total int64

	for c.remaining() >= minBlockLen && total < maxRows {
		count, err := c.varint()
		if err != nil {
			break
		}
		size, err := c.varint()
		if err != nil {
			break
		}
		if count <= 0 || size <= 0 || size > int64(c.remaining()-syncLength) {
			break
		}
		if err := c.skip(int(size) + syncLength); err != nil { // sync marker is not verified
			break
		}

		if count <= skip {
			skip -= count
			continue
		}
		// skip is only non-zero until the first block is indexed
		rows := count - skip
		if rows > math.MaxInt64-total {
			break
		}

		if size > md.MaxBlockSize {
			md.MaxBlockSize = size
		}
		total += rows
		if len(md.Blocks) == 0 {
			md.SkipRows = skip
			skip = 0
		}
		md.Blocks = append(md.Blocks, BlockInfo{
			EndOffset:      int64(c.pos()),
			CumulativeRows: total,
			NumRows:        count,
		})
	}

	md.NumRows = total
}
