package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/bsm/ocfmeta"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

type fileReport struct {
	File         string            `json:"file" yaml:"file"`
	Codec        string            `json:"codec" yaml:"codec"`
	SyncMarker   string            `json:"sync_marker" yaml:"sync_marker"`
	HeaderSize   int64             `json:"header_size" yaml:"header_size"`
	NumRows      int64             `json:"num_rows" yaml:"num_rows"`
	SkipRows     int64             `json:"skip_rows" yaml:"skip_rows"`
	MaxBlockSize int64             `json:"max_block_size" yaml:"max_block_size"`
	Metadata     map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Schema       []entryReport     `json:"schema" yaml:"schema"`
	Blocks       []blockReport     `json:"blocks" yaml:"blocks"`
}

type entryReport struct {
	Kind     string   `json:"kind" yaml:"kind"`
	Name     string   `json:"name,omitempty" yaml:"name,omitempty"`
	Parent   int      `json:"parent" yaml:"parent"`
	Children int      `json:"children,omitempty" yaml:"children,omitempty"`
	Symbols  []string `json:"symbols,omitempty" yaml:"symbols,omitempty,flow"`
}

type blockReport struct {
	EndOffset      int64 `json:"end_offset" yaml:"end_offset"`
	NumRows        int64 `json:"num_rows" yaml:"num_rows"`
	CumulativeRows int64 `json:"cumulative_rows" yaml:"cumulative_rows"`
}

func newFileReport(file string, md *ocfmeta.FileMetadata) *fileReport {
	r := &fileReport{
		File:         file,
		Codec:        md.Codec,
		SyncMarker:   hex.EncodeToString(md.SyncMarker[:]),
		HeaderSize:   md.HeaderSize,
		NumRows:      md.NumRows,
		SkipRows:     md.SkipRows,
		MaxBlockSize: md.MaxBlockSize,
		Metadata:     md.UserMetadata,
		Schema:       make([]entryReport, 0, len(md.Schema)),
		Blocks:       make([]blockReport, 0, len(md.Blocks)),
	}
	if r.Codec == "" {
		r.Codec = ocfmeta.NullCompression.String()
	}
	for _, e := range md.Schema {
		r.Schema = append(r.Schema, entryReport{
			Kind:     e.Kind.String(),
			Name:     e.Name,
			Parent:   e.Parent,
			Children: e.NumChildren,
			Symbols:  e.Symbols,
		})
	}
	for _, b := range md.Blocks {
		r.Blocks = append(r.Blocks, blockReport{
			EndOffset:      b.EndOffset,
			NumRows:        b.NumRows,
			CumulativeRows: b.CumulativeRows,
		})
	}
	return r
}

func writeReports(w io.Writer, format string, reports []*fileReport) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(reports); err != nil {
			return err
		}
		return enc.Close()
	default:
		for i, r := range reports {
			if i != 0 {
				fmt.Fprintln(w)
			}
			writeTable(w, r)
		}
		return nil
	}
}

func writeTable(w io.Writer, r *fileReport) {
	fmt.Fprintf(w, "File:           %s\n", r.File)
	fmt.Fprintf(w, "Codec:          %s\n", r.Codec)
	fmt.Fprintf(w, "Sync marker:    %s\n", r.SyncMarker)
	fmt.Fprintf(w, "Header size:    %d\n", r.HeaderSize)
	fmt.Fprintf(w, "Rows:           %d (skip %d)\n", r.NumRows, r.SkipRows)
	fmt.Fprintf(w, "Max block size: %d\n", r.MaxBlockSize)

	keys := make([]string, 0, len(r.Metadata))
	for k := range r.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "Metadata:       %s=%s\n", k, r.Metadata[k])
	}
	fmt.Fprintln(w)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Block", "End offset", "Rows", "Cumulative rows"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for i, b := range r.Blocks {
		table.Append([]string{
			strconv.Itoa(i),
			strconv.FormatInt(b.EndOffset, 10),
			strconv.FormatInt(b.NumRows, 10),
			strconv.FormatInt(b.CumulativeRows, 10),
		})
	}
	table.Render()
}

// writeSchemaTree prints one entry per line, children indented below
// their parents.
func writeSchemaTree(w io.Writer, s ocfmeta.Schema) error {
	children := s.ChildIndex()

	var walk func(idx []int, depth int) error
	walk = func(idx []int, depth int) error {
		for _, i := range idx {
			e := s[i]
			line := strings.Repeat("  ", depth) + e.Kind.String()
			if e.Name != "" {
				line += " " + e.Name
			}
			if len(e.Symbols) != 0 {
				line += " [" + strings.Join(e.Symbols, ", ") + "]"
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
			if err := walk(children[i], depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(s.Roots(), 0)
}
