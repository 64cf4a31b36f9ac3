// Package expr compiles single-variable equations such as "x^2 - 3x + sin(x)"
// so that graph elements can be plotted.
package expr

import (
	"fmt"
	"math"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var exprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	{Name: "Number", Pattern: `(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Op", Pattern: `\*\*|[-+*/^(),]`},
})

// Grammar, loosest binding first. Unary minus binds looser than ^ so
// -x^2 is -(x^2); juxtaposition ("3x", "2(x+1)") multiplies.
type expression struct {
	Left  *term     `parser:"@@"`
	Right []*termOp `parser:"@@*"`
}

type termOp struct {
	Op    string `parser:"@('+' | '-')"`
	Right *term  `parser:"@@"`
}

type term struct {
	Left  *unary      `parser:"@@"`
	Right []*factorOp `parser:"@@*"`
}

type factorOp struct {
	Explicit *explicitOp `parser:"  @@"`
	Implicit *power      `parser:"| @@"`
}

type explicitOp struct {
	Op      string `parser:"@('*' | '/')"`
	Operand *unary `parser:"@@"`
}

type unary struct {
	Neg   bool   `parser:"( @'-'"`
	Inner *unary `parser:"  @@ )"`
	Power *power `parser:"| @@"`
}

type power struct {
	Base *primary `parser:"@@"`
	Exp  *unary   `parser:"( ('^' | '**') @@ )?"`
}

type primary struct {
	Number *float64    `parser:"  @Number"`
	Call   *call       `parser:"| @@"`
	Ident  *string     `parser:"| @Ident"`
	Sub    *expression `parser:"| '(' @@ ')'"`
}

type call struct {
	Name string      `parser:"@Ident '('"`
	Arg  *expression `parser:"@@ ')'"`
}

var exprParser = participle.MustBuild[expression](
	participle.Lexer(exprLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

var functions = map[string]func(float64) float64{
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"asin":  math.Asin,
	"acos":  math.Acos,
	"atan":  math.Atan,
	"sinh":  math.Sinh,
	"cosh":  math.Cosh,
	"tanh":  math.Tanh,
	"sqrt":  math.Sqrt,
	"log":   math.Log,
	"ln":    math.Log,
	"log10": math.Log10,
	"exp":   math.Exp,
	"abs":   math.Abs,
	"floor": math.Floor,
	"ceil":  math.Ceil,
}

var constants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

// Expr is a compiled equation in the single variable x.
type Expr struct {
	src  string
	root *expression
}

// Compile parses an equation. A leading "y =" or "f(x) =" is dropped.
// Unknown identifiers and functions are rejected here rather than at
// evaluation time.
func Compile(src string) (*Expr, error) {
	body := src
	if i := strings.LastIndex(body, "="); i >= 0 {
		body = body[i+1:]
	}
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("expr: empty equation %q", src)
	}
	root, err := exprParser.ParseString("", body)
	if err != nil {
		return nil, fmt.Errorf("expr: parse %q: %w", src, err)
	}
	if err := root.check(); err != nil {
		return nil, fmt.Errorf("expr: %q: %w", src, err)
	}
	return &Expr{src: src, root: root}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(src string) *Expr {
	e, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return e
}

// String returns the source text.
func (e *Expr) String() string { return e.src }

// Eval evaluates the expression at x. Results outside the real domain
// come back as NaN or ±Inf, the way package math reports them.
func (e *Expr) Eval(x float64) float64 { return e.root.eval(x) }

func (n *expression) eval(x float64) float64 {
	v := n.Left.eval(x)
	for _, op := range n.Right {
		r := op.Right.eval(x)
		if op.Op == "+" {
			v += r
		} else {
			v -= r
		}
	}
	return v
}

func (n *term) eval(x float64) float64 {
	v := n.Left.eval(x)
	for _, op := range n.Right {
		switch {
		case op.Implicit != nil:
			v *= op.Implicit.eval(x)
		case op.Explicit.Op == "*":
			v *= op.Explicit.Operand.eval(x)
		default:
			v /= op.Explicit.Operand.eval(x)
		}
	}
	return v
}

func (n *unary) eval(x float64) float64 {
	if n.Neg {
		return -n.Inner.eval(x)
	}
	return n.Power.eval(x)
}

func (n *power) eval(x float64) float64 {
	base := n.Base.eval(x)
	if n.Exp == nil {
		return base
	}
	return math.Pow(base, n.Exp.eval(x))
}

func (n *primary) eval(x float64) float64 {
	switch {
	case n.Number != nil:
		return *n.Number
	case n.Call != nil:
		return functions[strings.ToLower(n.Call.Name)](n.Call.Arg.eval(x))
	case n.Ident != nil:
		name := strings.ToLower(*n.Ident)
		if name == "x" {
			return x
		}
		return constants[name]
	default:
		return n.Sub.eval(x)
	}
}

func (n *expression) check() error {
	if err := n.Left.check(); err != nil {
		return err
	}
	for _, op := range n.Right {
		if err := op.Right.check(); err != nil {
			return err
		}
	}
	return nil
}

func (n *term) check() error {
	if err := n.Left.check(); err != nil {
		return err
	}
	for _, op := range n.Right {
		var err error
		if op.Implicit != nil {
			err = op.Implicit.check()
		} else {
			err = op.Explicit.Operand.check()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (n *unary) check() error {
	if n.Neg {
		return n.Inner.check()
	}
	return n.Power.check()
}

func (n *power) check() error {
	if err := n.Base.check(); err != nil {
		return err
	}
	if n.Exp != nil {
		return n.Exp.check()
	}
	return nil
}

func (n *primary) check() error {
	switch {
	case n.Call != nil:
		if _, ok := functions[strings.ToLower(n.Call.Name)]; !ok {
			return fmt.Errorf("unknown function %q", n.Call.Name)
		}
		return n.Call.Arg.check()
	case n.Ident != nil:
		name := strings.ToLower(*n.Ident)
		if name == "x" {
			return nil
		}
		if _, ok := constants[name]; !ok {
			return fmt.Errorf("unknown identifier %q", *n.Ident)
		}
	case n.Sub != nil:
		return n.Sub.check()
	}
	return nil
}
