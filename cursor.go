package ocfmeta

import (
	"encoding/binary"
	"strings"

	"github.com/pkg/errors"
)

// cursor is a forward-only view over a byte buffer. Every read is
// bounds-checked.
type cursor struct {
	buf []byte
	off int
}

func (c *cursor) pos() int       { return c.off }
func (c *cursor) remaining() int { return len(c.buf) - c.off }

func (c *cursor) readByte() (byte, error) {
	if c.off >= len(c.buf) {
		return 0, ErrTruncated
	}
	b := c.buf[c.off]
	c.off++
	return b, nil
}

// varint decodes a zig-zag encoded variable-length integer.
func (c *cursor) varint() (int64, error) {
	v, n := binary.Varint(c.buf[c.off:])
	if n == 0 {
		return 0, ErrTruncated
	} else if n < 0 {
		return 0, errors.Wrapf(ErrCorrupt, "varint overflow at offset %d", c.off)
	}
	c.off += n
	return v, nil
}

func (c *cursor) read(n int) ([]byte, error) {
	if n < 0 {
		return nil, errors.Wrapf(ErrCorrupt, "negative length %d at offset %d", n, c.off)
	}
	if n > c.remaining() {
		return nil, ErrTruncated
	}
	p := c.buf[c.off : c.off+n]
	c.off += n
	return p, nil
}

// str reads a varint length followed by that many raw bytes.
func (c *cursor) str() (string, error) {
	n, err := c.varint()
	if err != nil {
		return "", err
	}
	if n > int64(c.remaining()) {
		return "", ErrTruncated
	}
	p, err := c.read(int(n))
	if err != nil {
		return "", err
	}
	return string(p), nil
}

func (c *cursor) skip(n int) error {
	_, err := c.read(n)
	return err
}

// --------------------------------------------------------------------

// textCursor scans schema text.
type textCursor struct {
	s   string
	off int
}

func (c *textCursor) more() bool { return c.off < len(c.s) }

func (c *textCursor) next() byte {
	b := c.s[c.off]
	c.off++
	return b
}

// quoted returns the text up to the next double quote and consumes the
// quote. Backslash escapes are not recognised, an escaped quote ends the
// token early.
func (c *textCursor) quoted() (string, bool) {
	n := strings.IndexByte(c.s[c.off:], '"')
	if n < 0 {
		c.off = len(c.s)
		return "", false
	}
	tok := c.s[c.off : c.off+n]
	c.off += n + 1
	return tok, true
}
