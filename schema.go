package ocfmeta

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind is the type of a schema entry.
type Kind uint8

// Schema entry kinds. Complex kinds sort after primitives.
const (
	Null Kind = iota
	Boolean
	Int
	Long
	Float
	Double
	Bytes
	String
	Record
	Enum
	Union
)

var kindNames = [...]string{
	Null:    "null",
	Boolean: "boolean",
	Int:     "int",
	Long:    "long",
	Float:   "float",
	Double:  "double",
	Bytes:   "bytes",
	String:  "string",
	Record:  "record",
	Enum:    "enum",
	Union:   "union",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// typeNames holds every kind that may be written as a type name. Union is
// only ever inferred from '['.
var typeNames = map[string]Kind{
	"null":    Null,
	"boolean": Boolean,
	"int":     Int,
	"long":    Long,
	"float":   Float,
	"double":  Double,
	"bytes":   Bytes,
	"string":  String,
	"record":  Record,
	"enum":    Enum,
}

// KindOf looks up a type name.
func KindOf(name string) (Kind, bool) {
	k, ok := typeNames[name]
	return k, ok
}

// NoParent is the parent index of root entries.
const NoParent = -1

// SchemaEntry is a single node of the schema tree.
type SchemaEntry struct {
	Kind        Kind
	Name        string
	Parent      int // index of the parent entry or NoParent
	NumChildren int
	Symbols     []string // enum symbols
}

// Schema is a schema tree in pre-order. Entries refer to their parents by
// index; a parent always precedes its children.
type Schema []SchemaEntry

// Roots returns the indices of all root entries.
func (s Schema) Roots() []int {
	return s.Children(NoParent)
}

// Children returns the indices of the direct children of entry i, in order.
func (s Schema) Children(i int) []int {
	var idx []int
	for j := i + 1; j < len(s); j++ {
		if s[j].Parent == i {
			idx = append(idx, j)
		}
	}
	return idx
}

// ChildIndex returns the child indices of every entry in a single pass.
// ChildIndex()[i] equals Children(i).
func (s Schema) ChildIndex() [][]int {
	idx := make([][]int, len(s))
	for j, e := range s {
		if e.Parent != NoParent {
			idx[e.Parent] = append(idx[e.Parent], j)
		}
	}
	return idx
}

// ParseSchema parses a JSON schema description. Only the subset needed to
// recover type, name, fields and symbols is understood; other attributes
// must have string values and are ignored.
//
// A field whose type is a union becomes the union entry itself: it keeps
// the field's name and the branches are its children.
func ParseSchema(text string) (Schema, error) {
	return parseSchema(text, DefaultMaxSchemaDepth)
}

// --------------------------------------------------------------------

type parseState uint8

const (
	expectAttrName parseState = iota
	expectColon
	expectAttrValue
	expectNextAttr
	expectNextSymbol
)

type attr uint8

const (
	attrNone attr = iota
	attrType
	attrName
	attrFields
	attrSymbols
)

var attrNames = map[string]attr{
	"type":    attrType,
	"name":    attrName,
	"fields":  attrFields,
	"symbols": attrSymbols,
}

type token uint8

const (
	tokString token = iota
	tokColon
	tokComma
	tokOpenObject
	tokCloseObject
	tokOpenArray
	tokCloseArray
	numTokens
)

var transitions = [numTokens]func(*schemaParser, string) error{
	tokString:      (*schemaParser).onString,
	tokColon:       (*schemaParser).onColon,
	tokComma:       (*schemaParser).onComma,
	tokOpenObject:  (*schemaParser).onOpenObject,
	tokCloseObject: (*schemaParser).onCloseObject,
	tokOpenArray:   (*schemaParser).onOpenArray,
	tokCloseArray:  (*schemaParser).onCloseArray,
}

type frame struct {
	bracket byte
	parent  int // parent index when the bracket was opened
}

type schemaParser struct {
	schema   Schema
	stack    []frame
	maxDepth int

	state  parseState
	attr   attr
	parent int // current tree parent
	entry  int // entry being populated
	off    int // offset of the current token
}

func parseSchema(text string, maxDepth int) (Schema, error) {
	p := &schemaParser{
		stack:    make([]frame, 0, 8),
		maxDepth: maxDepth,
		parent:   NoParent,
		entry:    NoParent,
	}
	c := &textCursor{s: text}

	for c.more() {
		p.off = c.off

		var tok token
		var str string

		switch ch := c.next(); ch {
		case ' ', '\t', '\r', '\n':
			continue
		case '"':
			s, ok := c.quoted()
			if !ok {
				return nil, p.fail("unterminated string")
			}
			tok, str = tokString, s
		case ':':
			tok = tokColon
		case ',':
			tok = tokComma
		case '{':
			tok = tokOpenObject
		case '}':
			tok = tokCloseObject
		case '[':
			tok = tokOpenArray
		case ']':
			tok = tokCloseArray
		default:
			return nil, p.fail("unexpected character %q", ch)
		}

		if err := transitions[tok](p, str); err != nil {
			return nil, err
		}
	}

	if len(p.stack) != 0 {
		return nil, p.fail("unclosed %q", p.stack[len(p.stack)-1].bracket)
	}
	return p.schema, nil
}

func (p *schemaParser) fail(format string, args ...interface{}) error {
	return errors.Wrapf(ErrSchema, "offset %d: "+format, append([]interface{}{p.off}, args...)...)
}

func (p *schemaParser) newEntry(kind Kind) {
	p.entry = len(p.schema)
	p.schema = append(p.schema, SchemaEntry{Kind: kind, Parent: p.parent})
	if p.parent != NoParent {
		p.schema[p.parent].NumChildren++
	}
}

func (p *schemaParser) push(bracket byte) error {
	if len(p.stack) >= p.maxDepth {
		return p.fail("nesting deeper than %d", p.maxDepth)
	}
	p.stack = append(p.stack, frame{bracket: bracket, parent: p.parent})
	return nil
}

// pop removes the innermost frame if it was opened by bracket.
func (p *schemaParser) pop(bracket byte) (frame, bool) {
	n := len(p.stack)
	if n == 0 || p.stack[n-1].bracket != bracket {
		return frame{}, false
	}
	f := p.stack[n-1]
	p.stack = p.stack[:n-1]
	return f, true
}

func (p *schemaParser) inArray() bool {
	n := len(p.stack)
	return n != 0 && p.stack[n-1].bracket == '['
}

func (p *schemaParser) onString(s string) error {
	if p.state == expectAttrName {
		// a bare type name is shorthand for "type": <name>
		if _, ok := typeNames[s]; ok && p.attr == attrNone {
			p.attr = attrType
			p.state = expectAttrValue
		} else {
			p.attr = attrNames[s]
			p.state = expectColon
			return nil
		}
	}

	switch p.state {
	case expectAttrValue:
		if p.entry == NoParent {
			p.newEntry(Null)
		}
		switch p.attr {
		case attrType:
			kind, ok := typeNames[s]
			if !ok {
				return p.fail("unknown type %q", s)
			}
			p.schema[p.entry].Kind = kind
		case attrName:
			p.schema[p.entry].Name = s
		}
		p.attr = attrNone
		p.state = expectNextAttr
	case expectNextSymbol:
		if p.entry == NoParent {
			return p.fail("symbol %q outside of an enum", s)
		}
		p.schema[p.entry].Symbols = append(p.schema[p.entry].Symbols, s)
	default:
		return p.fail("unexpected string %q", s)
	}
	return nil
}

func (p *schemaParser) onColon(string) error {
	if p.state != expectColon {
		return p.fail("unexpected ':'")
	}
	p.state = expectAttrValue
	return nil
}

func (p *schemaParser) onComma(string) error {
	switch p.state {
	case expectNextSymbol:
	case expectNextAttr:
		// list elements are separate entries
		if p.inArray() {
			p.entry = NoParent
		}
		p.state = expectAttrName
	default:
		return p.fail("unexpected ','")
	}
	return nil
}

func (p *schemaParser) onOpenObject(string) error {
	if p.state == expectAttrValue && p.attr == attrType {
		if p.entry == NoParent {
			p.newEntry(Record)
		}
		p.attr = attrNone
		p.state = expectAttrName
	}
	if p.state != expectAttrName {
		return p.fail("unexpected '{'")
	}
	return p.push('{')
}

func (p *schemaParser) onCloseObject(string) error {
	if p.state != expectNextAttr {
		return p.fail("unexpected '}'")
	}
	f, ok := p.pop('{')
	if !ok {
		return p.fail("unbalanced '}'")
	}
	p.parent = f.parent
	p.entry = NoParent
	return nil
}

func (p *schemaParser) onOpenArray(string) error {
	if p.state == expectAttrName && p.attr == attrNone {
		p.attr = attrType
		p.state = expectAttrValue
	}
	if p.state != expectAttrValue {
		return p.fail("unexpected '['")
	}

	switch p.attr {
	case attrSymbols:
		if err := p.push('['); err != nil {
			return err
		}
		p.attr = attrNone
		p.state = expectNextSymbol
		return nil
	case attrType:
		if err := p.push('['); err != nil {
			return err
		}
		if p.entry == NoParent {
			p.newEntry(Union)
		} else {
			p.schema[p.entry].Kind = Union
		}
	case attrFields:
		if p.entry == NoParent || p.schema[p.entry].Kind < Record {
			return p.fail("fields outside of a record")
		}
		if err := p.push('['); err != nil {
			return err
		}
	default:
		return p.fail("unexpected '['")
	}

	p.parent = p.entry
	p.entry = NoParent
	p.attr = attrNone
	p.state = expectAttrName
	return nil
}

func (p *schemaParser) onCloseArray(string) error {
	if p.state != expectNextAttr && p.state != expectNextSymbol {
		return p.fail("unexpected ']'")
	}
	if _, ok := p.pop('['); !ok {
		return p.fail("unbalanced ']'")
	}

	if p.state == expectNextSymbol {
		p.state = expectNextAttr
	} else if p.parent != NoParent {
		p.entry = p.parent
		p.parent = p.schema[p.entry].Parent
	}
	return nil
}
