package ocfmeta

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"io"
	"sort"

	"github.com/golang/snappy"
	"github.com/google/uuid"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
)

// WriterOptions define writer specific options.
type WriterOptions struct {
	// BlockSize is the minimum uncompressed size in bytes of each block.
	// Default: 16KiB.
	BlockSize int

	// The compression codec to use.
	// Default: NullCompression.
	Compression Compression

	// SyncMarker separates blocks.
	// Default: a random marker.
	SyncMarker [syncLength]byte

	// Metadata is stored in the file header next to the codec and schema.
	Metadata map[string]string
}

func (o *WriterOptions) norm() *WriterOptions {
	var oo WriterOptions
	if o != nil {
		oo = *o
	}

	if oo.BlockSize < 1 {
		oo.BlockSize = 1 << 14
	}
	if !oo.Compression.isValid() {
		oo.Compression = NullCompression
	}
	if oo.SyncMarker == [syncLength]byte{} {
		oo.SyncMarker = uuid.New()
	}

	return &oo
}

// Writer instances write container files. Objects must already be
// encoded, the writer only takes care of framing and compression.
type Writer struct {
	w      io.Writer
	o      *WriterOptions
	schema string

	offset int64 // bytes written
	header bool  // header written
	blen   int   // the number of objects in the current block

	buf []byte // plain buffer
	cmp []byte // compressed buffer
	tmp []byte // scratch buffer

	fbuf bytes.Buffer
	fenc *flate.Writer
	zenc *zstd.Encoder

	index []BlockInfo
}

// NewWriter wraps a writer and returns a Writer.
func NewWriter(w io.Writer, schema string, o *WriterOptions) *Writer {
	return &Writer{
		w:      w,
		o:      o.norm(),
		schema: schema,
		tmp:    make([]byte, 2*binary.MaxVarintLen64),
	}
}

// Append appends a single encoded object.
func (w *Writer) Append(datum []byte) error {
	if w.tmp == nil {
		return errClosed
	}
	if w.schema == "" {
		return ErrEmptySchema
	}

	if len(w.buf) != 0 && len(w.buf)+len(datum) > w.o.BlockSize {
		if err := w.flush(); err != nil {
			return err
		}
	}

	w.buf = append(w.buf, datum...)
	w.blen++
	return nil
}

// Flush writes all pending objects as a block.
func (w *Writer) Flush() error {
	if w.tmp == nil {
		return errClosed
	}
	return w.flush()
}

// Blocks returns a copy of the blocks written so far.
func (w *Writer) Blocks() []BlockInfo {
	return append([]BlockInfo(nil), w.index...)
}

// Close closes the writer
func (w *Writer) Close() error {
	if w.tmp == nil {
		return errClosed
	}
	if w.schema == "" {
		return ErrEmptySchema
	}
	if err := w.flush(); err != nil {
		return err
	}
	if err := w.writeHeader(); err != nil {
		return err
	}

	if w.zenc != nil {
		_ = w.zenc.Close()
	}
	w.tmp = nil
	return nil
}

func (w *Writer) writeHeader() error {
	if w.header {
		return nil
	}
	w.header = true

	keys := make([]string, 0, len(w.o.Metadata))
	for k := range w.o.Metadata {
		if k != metaCodec && k != metaSchema {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	hdr := append([]byte{}, magic...)
	hdr = binary.AppendVarint(hdr, int64(len(keys)+2))
	hdr = appendString(hdr, metaCodec)
	hdr = appendString(hdr, w.o.Compression.String())
	hdr = appendString(hdr, metaSchema)
	hdr = appendString(hdr, w.schema)
	for _, k := range keys {
		hdr = appendString(hdr, k)
		hdr = appendString(hdr, w.o.Metadata[k])
	}
	hdr = binary.AppendVarint(hdr, 0)
	hdr = append(hdr, w.o.SyncMarker[:]...)

	return w.writeRaw(hdr)
}

func (w *Writer) writeRaw(p []byte) error {
	n, err := w.w.Write(p)
	w.offset += int64(n)
	return err
}

func (w *Writer) flush() error {
	if w.blen == 0 {
		return nil
	}
	if err := w.writeHeader(); err != nil {
		return err
	}

	block, err := w.compress(w.buf)
	if err != nil {
		return err
	}

	n := binary.PutVarint(w.tmp[0:], int64(w.blen))
	n += binary.PutVarint(w.tmp[n:], int64(len(block)))
	if err := w.writeRaw(w.tmp[:n]); err != nil {
		return err
	}
	if err := w.writeRaw(block); err != nil {
		return err
	}
	if err := w.writeRaw(w.o.SyncMarker[:]); err != nil {
		return err
	}

	var total int64
	if n := len(w.index); n != 0 {
		total = w.index[n-1].CumulativeRows
	}
	w.index = append(w.index, BlockInfo{
		EndOffset:      w.offset,
		CumulativeRows: total + int64(w.blen),
		NumRows:        int64(w.blen),
	})
	w.buf = w.buf[:0]
	w.blen = 0

	return nil
}

func (w *Writer) compress(plain []byte) ([]byte, error) {
	switch w.o.Compression {
	case DeflateCompression:
		w.fbuf.Reset()
		if w.fenc == nil {
			enc, err := flate.NewWriter(&w.fbuf, flate.DefaultCompression)
			if err != nil {
				return nil, err
			}
			w.fenc = enc
		} else {
			w.fenc.Reset(&w.fbuf)
		}
		if _, err := w.fenc.Write(plain); err != nil {
			return nil, err
		}
		if err := w.fenc.Close(); err != nil {
			return nil, err
		}
		return w.fbuf.Bytes(), nil
	case SnappyCompression:
		// snappy blocks are followed by a big-endian CRC-32 of the plain data
		w.cmp = snappy.Encode(w.cmp[:cap(w.cmp)], plain)
		w.cmp = binary.BigEndian.AppendUint32(w.cmp, crc32.ChecksumIEEE(plain))
		return w.cmp, nil
	case ZstandardCompression:
		if w.zenc == nil {
			enc, err := zstd.NewWriter(nil)
			if err != nil {
				return nil, err
			}
			w.zenc = enc
		}
		w.cmp = w.zenc.EncodeAll(plain, w.cmp[:0])
		return w.cmp, nil
	default:
		return plain, nil
	}
}

func appendString(dst []byte, s string) []byte {
	dst = binary.AppendVarint(dst, int64(len(s)))
	return append(dst, s...)
}
