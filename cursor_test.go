package ocfmeta

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("cursor", func() {
	It("should read bytes", func() {
		c := &cursor{buf: []byte{1, 2}}
		Expect(c.readByte()).To(Equal(byte(1)))
		Expect(c.readByte()).To(Equal(byte(2)))
		Expect(c.remaining()).To(BeZero())

		_, err := c.readByte()
		Expect(err).To(MatchError(ErrTruncated))
		Expect(c.pos()).To(Equal(2))
	})

	It("should read zig-zag varints", func() {
		c := &cursor{buf: []byte{0x00, 0x01, 0x02, 0x7f, 0x80, 0x01, 0xac, 0x02}}
		for _, exp := range []int64{0, -1, 1, -64, 64, 150} {
			Expect(c.varint()).To(Equal(exp))
		}
		Expect(c.remaining()).To(BeZero())

		_, err := c.varint()
		Expect(err).To(MatchError(ErrTruncated))

		c = &cursor{buf: []byte{0x80, 0x80}}
		_, err = c.varint()
		Expect(err).To(MatchError(ErrTruncated))

		c = &cursor{buf: []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01}}
		_, err = c.varint()
		Expect(err).To(MatchError(ErrCorrupt))
	})

	It("should read length-prefixed strings", func() {
		c := &cursor{buf: []byte{0x06, 'f', 'o', 'o', 0x00, 0x06, 'b'}}
		Expect(c.str()).To(Equal("foo"))
		Expect(c.str()).To(Equal(""))

		_, err := c.str()
		Expect(err).To(MatchError(ErrTruncated))

		c = &cursor{buf: []byte{0x01, 'x'}}
		_, err = c.str()
		Expect(err).To(MatchError(ErrCorrupt))
	})

	It("should skip", func() {
		c := &cursor{buf: make([]byte, 10)}
		Expect(c.skip(4)).To(Succeed())
		Expect(c.pos()).To(Equal(4))
		Expect(c.skip(7)).To(MatchError(ErrTruncated))
		Expect(c.skip(6)).To(Succeed())
		Expect(c.remaining()).To(BeZero())
	})
})

var _ = Describe("textCursor", func() {
	It("should scan quoted strings", func() {
		c := &textCursor{s: `"abc" "" "x`}
		Expect(c.next()).To(Equal(byte('"')))

		s, ok := c.quoted()
		Expect(ok).To(BeTrue())
		Expect(s).To(Equal("abc"))

		c.next()
		Expect(c.next()).To(Equal(byte('"')))
		s, ok = c.quoted()
		Expect(ok).To(BeTrue())
		Expect(s).To(BeEmpty())

		c.next()
		c.next()
		_, ok = c.quoted()
		Expect(ok).To(BeFalse())
		Expect(c.more()).To(BeFalse())
	})

	It("should not handle escapes", func() {
		c := &textCursor{s: `a\"b"`}
		s, ok := c.quoted()
		Expect(ok).To(BeTrue())
		Expect(s).To(Equal(`a\`))
		Expect(c.s[c.off:]).To(Equal(`b"`))
	})
})
