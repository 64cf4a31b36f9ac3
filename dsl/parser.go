package dsl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/ByLCY/whiteboard/palette"
)

var (
	lineLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "String", Pattern: `"[^"]*"`},
		{Name: "Punct", Pattern: `[][()=,]`},
		{Name: "Word", Pattern: `[^\s"=,()\[\]]+`},
	})

	lineParser = participle.MustBuild[recordLine](
		participle.Lexer(lineLexer),
		participle.Elide("Whitespace"),
		participle.UseLookahead(2),
	)
)

// recordLine is the grammar of one markup line: `[kind items...] attrs...`.
type recordLine struct {
	Pos   lexer.Position `parser:""`
	Kind  string         `parser:"'[' @Word"`
	Head  []*headItem    `parser:"@@*"`
	Attrs []*attribute   `parser:"']' @@*"`
}

// headItem is either an attribute or a bare flag word inside the brackets (eg: `[end group]`).
type headItem struct {
	Attr *attribute `parser:"  @@"`
	Flag *string    `parser:"| @Word"`
}

type attribute struct {
	Pos   lexer.Position `parser:""`
	Key   string         `parser:"@Word '='"`
	Value *rawValue      `parser:"@@"`
}

type rawValue struct {
	Quoted *Verbatim `parser:"  @String"`
	Pair   *rawPair  `parser:"| '(' @@ ')'"`
	Word   *string   `parser:"| @Word"`
}

type rawPair struct {
	X string `parser:"@Word ','"`
	Y string `parser:"@Word"`
}

// Verbatim strips the surrounding quotes and keeps everything else as written,
// so LaTeX backslashes survive untouched.
type Verbatim string

// Capture implements participle.Capture.
func (v *Verbatim) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	raw := values[0]
	if len(raw) < 2 || raw[0] != '"' || raw[len(raw)-1] != '"' {
		return fmt.Errorf("malformed string literal %s", raw)
	}
	*v = Verbatim(raw[1 : len(raw)-1])
	return nil
}

// Parse reads markup from r and returns its records in source order.
func Parse(r io.Reader) (*Document, error) {
	p := &parser{doc: &Document{}}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		p.line++
		if err := p.parseLine(scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read markup: %w", err)
	}
	if p.group != nil {
		return nil, &StructuralError{Line: p.group.Line, Text: p.groupText, Reason: fmt.Sprintf("group %q never closed", p.group.ID)}
	}
	return p.doc, nil
}

// ParseString parses markup held in a string.
func ParseString(input string) (*Document, error) {
	return Parse(strings.NewReader(input))
}

type parser struct {
	doc   *Document
	line  int
	group *GroupStart
	// groupText is the source line of the open group.
	groupText string
}

func (p *parser) parseLine(text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return nil
	}
	if !strings.HasPrefix(trimmed, "[") {
		return &SyntaxError{Line: p.line, Text: text, Err: errors.New("record must start with '['")}
	}

	ast, err := lineParser.ParseString(fmt.Sprintf("line %d", p.line), trimmed)
	if err != nil {
		return &SyntaxError{Line: p.line, Text: text, Err: err}
	}

	attrs, flags, err := collectAttributes(ast)
	if err != nil {
		return &SyntaxError{Line: p.line, Text: text, Err: err}
	}

	switch {
	case isGroupEnd(ast.Kind, flags):
		if p.group == nil {
			return &StructuralError{Line: p.line, Text: text, Reason: "group end without an open group"}
		}
		p.group = nil
		p.doc.Records = append(p.doc.Records, &GroupEnd{Line: p.line})
	case isGroupStart(ast.Kind):
		if p.group != nil {
			return &StructuralError{
				Line:   p.line,
				Text:   text,
				Reason: fmt.Sprintf("group start while group opened on line %d is still open", p.group.Line),
			}
		}
		gs := &GroupStart{Line: p.line, Position: pointAttr(attrs, "at")}
		if v, ok := attrs["id"]; ok {
			gs.ID = v.String()
		}
		p.group, p.groupText = gs, text
		p.doc.Records = append(p.doc.Records, gs)
	default:
		p.doc.Records = append(p.doc.Records, p.buildElement(ast.Kind, attrs))
	}
	return nil
}

func isGroupStart(kind string) bool {
	k := strings.ToLower(kind)
	return k == "group" || k == "group_start"
}

func isGroupEnd(kind string, flags []string) bool {
	switch strings.ToLower(kind) {
	case "group_end", "end_group":
		return true
	case "end":
		return len(flags) > 0 && strings.EqualFold(flags[0], "group")
	}
	return false
}

// collectAttributes merges bracket and trailing attributes; later keys win.
func collectAttributes(ast *recordLine) (map[string]Value, []string, error) {
	attrs := map[string]Value{}
	var flags []string
	add := func(a *attribute) error {
		v, err := convertValue(a.Value)
		if err != nil {
			return fmt.Errorf("attribute %s: %w", a.Key, err)
		}
		attrs[strings.ToLower(a.Key)] = v
		return nil
	}
	for _, item := range ast.Head {
		switch {
		case item.Attr != nil:
			if err := add(item.Attr); err != nil {
				return nil, nil, err
			}
		case item.Flag != nil:
			flags = append(flags, *item.Flag)
		}
	}
	for _, a := range ast.Attrs {
		if err := add(a); err != nil {
			return nil, nil, err
		}
	}
	return attrs, flags, nil
}

func convertValue(raw *rawValue) (Value, error) {
	switch {
	case raw == nil:
		return Value{}, errors.New("missing value")
	case raw.Quoted != nil:
		return Value{Kind: ValueString, Text: string(*raw.Quoted)}, nil
	case raw.Pair != nil:
		x, err := strconv.Atoi(raw.Pair.X)
		if err != nil {
			return Value{}, fmt.Errorf("pair member %q is not an integer", raw.Pair.X)
		}
		y, err := strconv.Atoi(raw.Pair.Y)
		if err != nil {
			return Value{}, fmt.Errorf("pair member %q is not an integer", raw.Pair.Y)
		}
		return Value{Kind: ValuePair, Pair: Point{X: x, Y: y}}, nil
	case raw.Word != nil:
		if n, err := strconv.Atoi(*raw.Word); err == nil {
			return Value{Kind: ValueInt, Int: n, Text: *raw.Word}, nil
		}
		return Value{Kind: ValueIdent, Text: *raw.Word}, nil
	}
	return Value{}, errors.New("empty value")
}

func (p *parser) buildElement(tag string, attrs map[string]Value) *Element {
	el := &Element{
		Kind:    ParseKind(tag),
		RawKind: tag,
		Color:   palette.Fallback,
		Size:    DefaultSize,
		Line:    p.line,
		Attrs:   attrs,
	}
	if p.group != nil {
		el.Grouped = true
		el.GroupID = p.group.ID
	}
	if v, ok := attrs["id"]; ok {
		el.ID = v.String()
	}
	if v, ok := attrs["content"]; ok {
		el.Content = v.String()
	}
	el.Position = pointAttr(attrs, "at")
	if v, ok := attrs["color"]; ok && strings.TrimSpace(v.String()) != "" {
		el.Color = v.String()
	}
	if v, ok := attrs["size"]; ok {
		if n, ok := v.AsInt(); ok && n > 0 {
			el.Size = n
		}
	}

	switch el.Kind {
	case KindGraph:
		el.Graph = graphSpec(el, attrs)
	case KindTable:
		el.Table = tableSpec(attrs)
	case KindShape:
		el.Shape = shapeSpec(attrs)
	}
	return el
}

func pointAttr(attrs map[string]Value, key string) *Point {
	v, ok := attrs[key]
	if !ok || v.Kind != ValuePair {
		return nil
	}
	pt := v.Pair
	return &pt
}

func graphSpec(el *Element, attrs map[string]Value) *GraphSpec {
	spec := &GraphSpec{Equation: el.Content, Domain: DefaultDomain}
	if v, ok := attrs["equation"]; ok {
		spec.Equation = v.String()
	}
	if d := pointAttr(attrs, "domain"); d != nil && d.X < d.Y {
		spec.Domain = [2]float64{float64(d.X), float64(d.Y)}
	}
	return spec
}

func tableSpec(attrs map[string]Value) *TableSpec {
	spec := &TableSpec{}
	if v, ok := attrs["headers"]; ok {
		spec.Headers = splitCells(v.String())
	}
	if v, ok := attrs["rows"]; ok {
		for _, row := range strings.Split(v.String(), ";") {
			if strings.TrimSpace(row) == "" {
				continue
			}
			spec.Rows = append(spec.Rows, splitCells(row))
		}
	}
	return spec
}

func splitCells(s string) []string {
	parts := strings.Split(s, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func shapeSpec(attrs map[string]Value) *ShapeSpec {
	spec := &ShapeSpec{Form: "rect"}
	for _, key := range []string{"shape", "form"} {
		if v, ok := attrs[key]; ok && v.String() != "" {
			spec.Form = strings.ToLower(v.String())
			break
		}
	}
	if v, ok := attrs["width"]; ok {
		if n, ok := v.AsInt(); ok && n > 0 {
			spec.Width = n
		}
	}
	if v, ok := attrs["height"]; ok {
		if n, ok := v.AsInt(); ok && n > 0 {
			spec.Height = n
		}
	}
	if v, ok := attrs["fill"]; ok {
		spec.Fill = v.String()
	}
	return spec
}
