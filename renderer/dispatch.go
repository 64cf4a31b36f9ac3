package renderer

import (
	"context"
	"fmt"
	"image"
	"math"
	"sync"

	"github.com/ByLCY/whiteboard/dsl"
	"github.com/ByLCY/whiteboard/layout"
	"github.com/ByLCY/whiteboard/logging"
	"github.com/ByLCY/whiteboard/palette"
	"github.com/ByLCY/whiteboard/surface"
)

// Dispatcher 实现 layout.Measurer：按类型调用栅格化能力，把位图合成到引擎给出的锚点，
// 并返回位图的实际高度。Dispatcher 自身不测量也不排版内容。
type Dispatcher struct {
	caps   Capabilities
	canvas *surface.Canvas

	mu       sync.Mutex
	prepared map[*dsl.Element]rendered
}

var _ layout.Measurer = (*Dispatcher)(nil)

type rendered struct {
	img image.Image
	err error
}

// NewDispatcher 创建分发器，结果合成到 c 上。
func NewDispatcher(c *surface.Canvas, caps Capabilities) *Dispatcher {
	return &Dispatcher{caps: caps, canvas: c, prepared: map[*dsl.Element]rendered{}}
}

// Canvas 返回合成目标。
func (d *Dispatcher) Canvas() *surface.Canvas { return d.canvas }

// Route 返回元素实际使用的能力类型：含 $ 公式标记的 text/annotation 走公式排版。
func Route(el *dsl.Element) dsl.Kind {
	if el.Kind.TextLike() && el.HasFormula() {
		return dsl.KindMath
	}
	return el.Kind
}

// Measure 栅格化并合成一个元素，返回占用高度。
func (d *Dispatcher) Measure(ctx context.Context, cmd *layout.Command) (float64, error) {
	el := cmd.Element
	if el == nil {
		return 0, fmt.Errorf("第 %d 行的指令缺少元素", cmd.Line)
	}
	if el.Kind == dsl.KindUnknown {
		return 0, &UnknownKindError{Line: el.Line, ID: el.ID, Kind: el.RawKind}
	}
	img, err := d.take(ctx, el)
	if err != nil {
		return 0, &RasterizationError{Line: el.Line, ID: el.ID, Kind: el.RawKind, Err: err}
	}
	if img == nil {
		return 0, nil
	}
	anchor := image.Pt(int(math.Round(cmd.X)), int(math.Round(cmd.Y)))
	if err := d.canvas.Composite(img, anchor); err != nil {
		return 0, &RasterizationError{Line: el.Line, ID: el.ID, Kind: el.RawKind, Err: err}
	}
	logging.For("renderer").Debug("composited", "id", el.ID, "kind", el.RawKind, "x", anchor.X, "y", anchor.Y, "h", img.Bounds().Dy())
	return float64(img.Bounds().Dy()), nil
}

// take 优先使用预取结果，否则同步栅格化。
func (d *Dispatcher) take(ctx context.Context, el *dsl.Element) (image.Image, error) {
	d.mu.Lock()
	r, ok := d.prepared[el]
	if ok {
		delete(d.prepared, el)
	}
	d.mu.Unlock()
	if ok {
		return r.img, r.err
	}
	return d.rasterize(ctx, el)
}

// rasterize 在调用能力前解析颜色，能力总是收到具体的 RGB 值。
func (d *Dispatcher) rasterize(ctx context.Context, el *dsl.Element) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rgb := palette.Resolve(el.Color)
	switch Route(el) {
	case dsl.KindText, dsl.KindAnnotation:
		if d.caps.Text == nil {
			return nil, fmt.Errorf("未配置文本渲染")
		}
		return d.caps.Text.RasterizeText(el.Content, el.Size, rgb)
	case dsl.KindMath:
		if d.caps.Math == nil {
			return nil, fmt.Errorf("未配置公式渲染")
		}
		return d.caps.Math.RasterizeMath(el.Content, el.Size, rgb)
	case dsl.KindGraph:
		if d.caps.Graph == nil {
			return nil, fmt.Errorf("未配置函数绘图")
		}
		spec := el.Graph
		if spec == nil {
			spec = &dsl.GraphSpec{Equation: el.Content, Domain: dsl.DefaultDomain}
		}
		return d.caps.Graph.PlotGraph(spec.Equation, spec.Domain, el.Size, rgb)
	case dsl.KindTable:
		if d.caps.Table == nil || el.Table == nil {
			return nil, nil
		}
		return d.caps.Table.RasterizeTable(el.Table, el.Size, rgb)
	case dsl.KindShape:
		if d.caps.Shape == nil || el.Shape == nil {
			return nil, nil
		}
		return d.caps.Shape.RasterizeShape(el.Shape, el.Size, rgb)
	}
	return nil, &UnknownKindError{Line: el.Line, ID: el.ID, Kind: el.RawKind}
}
