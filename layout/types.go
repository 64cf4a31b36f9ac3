package layout

// 该文件定义布局结果，供渲染分发与调试 JSON 共用。

import (
	"context"
	"errors"

	"github.com/ByLCY/whiteboard/dsl"
)

// ErrSkip 由 Measurer 包装返回，表示该元素不绘制、不推进游标。
var ErrSkip = errors.New("layout: element skipped")

// Measurer 负责渲染一个已定位的元素，并返回其实际占用高度。
// 布局与渲染按元素交替进行：先 reserve（名义高度），再以测得高度 commit。
type Measurer interface {
	Measure(ctx context.Context, cmd *Command) (float64, error)
}

// MeasureFunc 让普通函数满足 Measurer。
type MeasureFunc func(ctx context.Context, cmd *Command) (float64, error)

func (f MeasureFunc) Measure(ctx context.Context, cmd *Command) (float64, error) {
	return f(ctx, cmd)
}

// Result 保存一次布局的全部绘制指令与内容范围。
type Result struct {
	Width    int       `json:"width"`
	Extent   float64   `json:"extent"`
	Commands []Command `json:"commands"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// Command 是一个已经确定左上角锚点与占用高度的绘制指令。
type Command struct {
	ID      string  `json:"id"`
	Kind    string  `json:"kind"`
	Line    int     `json:"line"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Nominal float64 `json:"nominal"`
	Height  float64 `json:"height"`
	Size    int     `json:"size"`
	Color   string  `json:"color"`
	Grouped bool    `json:"grouped"`
	GroupID string  `json:"groupId,omitempty"`
	Flow    int     `json:"flow"` // 0 为顶层流，n 为文档中第 n 个分组
	Skipped bool    `json:"skipped,omitempty"`

	Element *dsl.Element `json:"-"`
}

// Bottom 返回指令占用区域的下边缘。
func (c Command) Bottom() float64 { return c.Y + c.Height }

// Warning 记录可恢复的逐元素问题（未知类型、栅格化失败等）。
type Warning struct {
	Line    int    `json:"line"`
	ID      string `json:"id,omitempty"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (w Warning) Error() string { return w.Message }

// Flows 按流分组返回指令（保持源顺序）；跳过的指令不属于任何流。
func (r *Result) Flows() map[int][]Command {
	out := map[int][]Command{}
	for _, cmd := range r.Commands {
		if cmd.Skipped {
			continue
		}
		out[cmd.Flow] = append(out[cmd.Flow], cmd)
	}
	return out
}
