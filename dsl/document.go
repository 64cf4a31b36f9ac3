package dsl

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/whiteboard/palette"
)

// DefaultSize is the font/scale size used when an element carries none.
const DefaultSize = 20

// DefaultDomain is the x range plotted when a graph has no domain attribute.
var DefaultDomain = [2]float64{-10, 10}

// Kind is the closed set of renderable element kinds.
type Kind int

const (
	KindUnknown Kind = iota
	KindText
	KindMath
	KindAnnotation
	KindGraph
	KindTable
	KindShape
)

// ParseKind maps a bracket tag to a Kind. Unrecognized tags yield KindUnknown.
func ParseKind(tag string) Kind {
	switch strings.ToLower(tag) {
	case "text":
		return KindText
	case "math":
		return KindMath
	case "annotation":
		return KindAnnotation
	case "graph":
		return KindGraph
	case "table":
		return KindTable
	case "shape":
		return KindShape
	default:
		return KindUnknown
	}
}

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindMath:
		return "math"
	case KindAnnotation:
		return "annotation"
	case KindGraph:
		return "graph"
	case KindTable:
		return "table"
	case KindShape:
		return "shape"
	default:
		return "unknown"
	}
}

// TextLike reports whether the kind is plain styled text whose height is known before rendering.
func (k Kind) TextLike() bool {
	return k == KindText || k == KindAnnotation
}

// Point is an author supplied (x, y) pair.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ValueKind tags the four attribute value grammars.
type ValueKind int

const (
	ValueString ValueKind = iota
	ValuePair
	ValueInt
	ValueIdent
)

// Value is a single parsed attribute value.
type Value struct {
	Kind ValueKind
	Text string // verbatim text for strings and identifiers, decimal form for ints
	Int  int
	Pair Point
}

// String returns the textual form of the value.
func (v Value) String() string {
	switch v.Kind {
	case ValuePair:
		return fmt.Sprintf("(%d,%d)", v.Pair.X, v.Pair.Y)
	case ValueInt:
		return strconv.Itoa(v.Int)
	default:
		return v.Text
	}
}

// AsInt returns the integer held by an int value or by a numeric string/identifier.
func (v Value) AsInt() (int, bool) {
	switch v.Kind {
	case ValueInt:
		return v.Int, true
	case ValueString, ValueIdent:
		n, err := strconv.Atoi(strings.TrimSpace(v.Text))
		return n, err == nil
	default:
		return 0, false
	}
}

// Record is one entry of a parsed document: *Element, *GroupStart or *GroupEnd.
type Record interface {
	SourceLine() int
	record()
}

// Element is a renderable record.
type Element struct {
	ID       string
	Kind     Kind
	RawKind  string
	Content  string
	Position *Point
	Color    string
	Size     int
	Grouped  bool
	GroupID  string
	Line     int

	Graph *GraphSpec
	Table *TableSpec
	Shape *ShapeSpec

	Attrs map[string]Value
}

// GraphSpec carries the plot payload of a graph element.
type GraphSpec struct {
	Equation string
	Domain   [2]float64
}

// TableSpec carries the grid payload of a table element.
type TableSpec struct {
	Headers []string
	Rows    [][]string
}

// ShapeSpec carries the payload of a shape element.
type ShapeSpec struct {
	Form   string
	Width  int
	Height int
	Fill   string
}

// GroupStart opens a grouped flow.
type GroupStart struct {
	ID       string
	Position *Point
	Line     int
}

// GroupEnd closes the open group.
type GroupEnd struct {
	Line int
}

func (e *Element) SourceLine() int    { return e.Line }
func (g *GroupStart) SourceLine() int { return g.Line }
func (g *GroupEnd) SourceLine() int   { return g.Line }

func (*Element) record()    {}
func (*GroupStart) record() {}
func (*GroupEnd) record()   {}

// RGB resolves the element color through the palette.
func (e *Element) RGB() palette.RGB {
	return palette.Resolve(e.Color)
}

// Attr returns a raw attribute by lower-case key.
func (e *Element) Attr(key string) (Value, bool) {
	v, ok := e.Attrs[strings.ToLower(key)]
	return v, ok
}

// HasFormula reports whether the content embeds $...$ formula markers.
func (e *Element) HasFormula() bool {
	return strings.Contains(e.Content, "$")
}

// Document is the ordered result of parsing markup text.
type Document struct {
	Records []Record
}

// Elements returns the leaf elements in source order.
func (d *Document) Elements() []*Element {
	if d == nil {
		return nil
	}
	out := make([]*Element, 0, len(d.Records))
	for _, r := range d.Records {
		if el, ok := r.(*Element); ok {
			out = append(out, el)
		}
	}
	return out
}

// Validate checks document-level contracts the parser does not enforce:
// unique ids and a closed final group. Problems are joined into one error.
func (d *Document) Validate() error {
	if d == nil {
		return nil
	}
	var errs []error
	seen := map[string]int{}
	open := (*GroupStart)(nil)
	check := func(id string, line int) {
		if id == "" {
			return
		}
		if first, ok := seen[id]; ok {
			errs = append(errs, &DuplicateIDError{ID: id, Line: line, First: first})
			return
		}
		seen[id] = line
	}
	for _, r := range d.Records {
		switch rec := r.(type) {
		case *Element:
			check(rec.ID, rec.Line)
		case *GroupStart:
			check(rec.ID, rec.Line)
			open = rec
		case *GroupEnd:
			open = nil
		}
	}
	if open != nil {
		errs = append(errs, &UnclosedGroupError{ID: open.ID, Line: open.Line})
	}
	return errors.Join(errs...)
}
