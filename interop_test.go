package ocfmeta_test

import (
	"bytes"

	"github.com/bsm/ocfmeta"
	"github.com/linkedin/goavro/v2"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/types"
)

var _ = Describe("goavro interop", func() {
	const schema = `{
		"type": "record",
		"name": "Event",
		"fields": [
			{"name": "id", "type": "long"},
			{"name": "label", "type": ["null", "string"]},
			{"name": "level", "type": {"type": "enum", "name": "Level", "symbols": ["LOW", "HIGH"]}}
		]
	}`

	haveEntry := func(kind ocfmeta.Kind, name string, children int) types.GomegaMatcher {
		return WithTransform(func(e ocfmeta.SchemaEntry) []interface{} {
			return []interface{}{e.Kind, e.Name, e.NumChildren}
		}, Equal([]interface{}{kind, name, children}))
	}

	DescribeTable("parse",
		func(compression string) {
			codec, err := goavro.NewCodec(schema)
			Expect(err).NotTo(HaveOccurred())

			buf := new(bytes.Buffer)
			ocfw, err := goavro.NewOCFWriter(goavro.OCFConfig{
				W:               buf,
				Codec:           codec,
				CompressionName: compression,
				MetaData:        map[string][]byte{"origin": []byte("goavro")},
			})
			Expect(err).NotTo(HaveOccurred())

			// each call writes a single block
			for _, n := range []int{7, 12, 5} {
				rows := make([]interface{}, 0, n)
				for i := 0; i < n; i++ {
					rows = append(rows, map[string]interface{}{
						"id":    int64(i),
						"label": goavro.Union("string", "row"),
						"level": "HIGH",
					})
				}
				Expect(ocfw.Append(rows)).To(Succeed())
			}

			md, err := ocfmeta.Parse(buf.Bytes(), &ocfmeta.ParseOptions{FirstRow: 9})
			Expect(err).NotTo(HaveOccurred())
			Expect(md.UserMetadata).To(HaveKeyWithValue("origin", "goavro"))
			Expect(md.SkipRows).To(Equal(int64(2)))
			Expect(md.NumRows).To(Equal(int64(15)))
			Expect(md.Blocks).To(HaveLen(2))
			Expect(md.Blocks[0].NumRows).To(Equal(int64(12)))
			Expect(md.Blocks[1].CumulativeRows).To(Equal(int64(15)))
			Expect(md.Blocks[1].EndOffset).To(Equal(int64(buf.Len())))
			if compression != goavro.CompressionNullLabel {
				Expect(md.Codec).To(Equal(compression))
			}

			Expect(md.Schema).To(HaveLen(6))
			Expect(md.Schema[0]).To(haveEntry(ocfmeta.Record, "Event", 3))
			Expect(md.Schema[1]).To(haveEntry(ocfmeta.Long, "id", 0))
			Expect(md.Schema[2]).To(haveEntry(ocfmeta.Union, "label", 2))
			Expect(md.Schema[5]).To(haveEntry(ocfmeta.Enum, "Level", 0))
			Expect(md.Schema[5].Symbols).To(Equal([]string{"LOW", "HIGH"}))
		},
		Entry("null", goavro.CompressionNullLabel),
		Entry("deflate", goavro.CompressionDeflateLabel),
		Entry("snappy", goavro.CompressionSnappyLabel),
	)

	It("should read files written by Writer", func() {
		buf := new(bytes.Buffer)
		w := ocfmeta.NewWriter(buf, `"long"`, &ocfmeta.WriterOptions{
			Compression: ocfmeta.SnappyCompression,
		})
		codec, err := goavro.NewCodec(`"long"`)
		Expect(err).NotTo(HaveOccurred())
		for i := int64(0); i < 50; i++ {
			datum, err := codec.BinaryFromNative(nil, i)
			Expect(err).NotTo(HaveOccurred())
			Expect(w.Append(datum)).To(Succeed())
		}
		Expect(w.Close()).To(Succeed())

		ocfr, err := goavro.NewOCFReader(bytes.NewReader(buf.Bytes()))
		Expect(err).NotTo(HaveOccurred())

		var vals []interface{}
		for ocfr.Scan() {
			v, err := ocfr.Read()
			Expect(err).NotTo(HaveOccurred())
			vals = append(vals, v)
		}
		Expect(ocfr.Err()).NotTo(HaveOccurred())
		Expect(vals).To(HaveLen(50))
		Expect(vals[49]).To(Equal(int64(49)))
	})
})
