package layout

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/ByLCY/whiteboard/dsl"
	"github.com/ByLCY/whiteboard/logging"
)

// Engine 执行纵向流式布局：顶层流与各分组流各自维护单调不减的游标。
type Engine struct {
	opts Options
}

// NewEngine 创建布局引擎，未设置的参数取默认值。
func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts.withDefaults()}
}

// Options 返回生效的参数。
func (e *Engine) Options() Options { return e.opts }

// Plan 在不渲染的情况下布局文档：每个元素都按名义高度占位。
func Plan(doc *dsl.Document, opts Options) (*Result, error) {
	return NewEngine(opts).Run(context.Background(), doc, nil)
}

// flow 是一个独立的纵向排版列。
type flow struct {
	index   int
	groupID string
	grouped bool
	originX float64
	cursorY float64
}

// Run 按源顺序处理记录，逐元素 reserve → Measure → commit。
// m 为空时使用名义高度。ctx 在每条记录之前检查，取消后立即返回。
func (e *Engine) Run(ctx context.Context, doc *dsl.Document, m Measurer) (*Result, error) {
	if doc == nil {
		return nil, fmt.Errorf("layout: 文档为空")
	}
	if m == nil {
		m = nominal{}
	}
	log := logging.For("layout")

	res := &Result{Width: e.opts.Width}
	top := &flow{originX: e.opts.LeftMargin, cursorY: e.opts.TopMargin}
	var group *flow
	groups := 0

	for _, rec := range doc.Records {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("layout: 第 %d 行之前已取消: %w", rec.SourceLine(), err)
		}
		switch r := rec.(type) {
		case *dsl.GroupStart:
			groups++
			group = &flow{index: groups, groupID: r.ID, grouped: true, originX: e.opts.LeftMargin, cursorY: top.cursorY}
			if r.Position != nil {
				group.originX = float64(r.Position.X)
				group.cursorY = float64(r.Position.Y)
			}
			log.Debug("group opened", "id", r.ID, "x", group.originX, "y", group.cursorY)
		case *dsl.GroupEnd:
			group = nil
		case *dsl.Element:
			f := top
			if r.Grouped && group != nil {
				f = group
			}
			cmd := e.reserve(f, r)
			measured, err := m.Measure(ctx, &cmd)
			switch {
			case errors.Is(err, ErrSkip):
				cmd.Skipped = true
				res.Warnings = append(res.Warnings, warningFor(r, err))
				log.Warn("element skipped", "line", r.Line, "id", r.ID, "err", err)
			case err != nil:
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, fmt.Errorf("layout: 第 %d 行渲染时已取消: %w", r.Line, ctxErr)
				}
				// 栅格化失败：以零高度占位继续排版
				e.commit(f, &cmd, 0, true)
				res.Warnings = append(res.Warnings, warningFor(r, err))
				log.Warn("element rendered as placeholder", "line", r.Line, "id", r.ID, "err", err)
			default:
				e.commit(f, &cmd, measured, false)
			}
			if !cmd.Skipped {
				res.Extent = math.Max(res.Extent, cmd.Bottom())
			}
			res.Commands = append(res.Commands, cmd)
		}
	}
	return res, nil
}

// reserve 计算锚点与名义高度。y 只能被推后，不能覆盖同一流中上一个元素。
func (e *Engine) reserve(f *flow, el *dsl.Element) Command {
	x, y := f.originX, f.cursorY
	if el.Position != nil {
		if !f.grouped {
			x = float64(el.Position.X)
		}
		y = float64(el.Position.Y)
	}
	if y < f.cursorY {
		y = f.cursorY
	}
	size := el.Size
	if size <= 0 {
		size = dsl.DefaultSize
	}
	return Command{
		ID:      el.ID,
		Kind:    el.RawKind,
		Line:    el.Line,
		X:       x,
		Y:       y,
		Nominal: float64(size) * e.opts.LineFactor,
		Size:    size,
		Color:   el.Color,
		Grouped: f.grouped,
		GroupID: f.groupID,
		Flow:    f.index,
		Element: el,
	}
}

// commit 固定占用高度并推进游标。文本类元素至少占用名义高度，图像类元素以实测为准。
func (e *Engine) commit(f *flow, cmd *Command, measured float64, placeholder bool) {
	h := math.Max(measured, 0)
	if !placeholder && cmd.Element != nil && cmd.Element.Kind.TextLike() {
		h = math.Max(h, cmd.Nominal)
	}
	cmd.Height = h
	f.cursorY = cmd.Y + h + e.opts.Gap
}

func warningFor(el *dsl.Element, err error) Warning {
	return Warning{Line: el.Line, ID: el.ID, Kind: el.RawKind, Message: err.Error()}
}

// nominal 是不渲染时使用的 Measurer：未知类型跳过，其余按名义高度。
type nominal struct{}

func (nominal) Measure(_ context.Context, cmd *Command) (float64, error) {
	if cmd.Element != nil && cmd.Element.Kind == dsl.KindUnknown {
		return 0, fmt.Errorf("未知元素类型 %q: %w", cmd.Kind, ErrSkip)
	}
	return cmd.Nominal, nil
}
