package renderer

import (
	"fmt"

	"github.com/ByLCY/whiteboard/layout"
)

// UnknownKindError 表示元素类型不在可分发的集合内。该元素被跳过。
type UnknownKindError struct {
	Line int
	ID   string
	Kind string
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("line %d: unknown element kind %q (id=%s)", e.Line, e.Kind, e.ID)
}

// Unwrap 让布局引擎把该元素当作跳过处理。
func (e *UnknownKindError) Unwrap() error { return layout.ErrSkip }

// RasterizationError 表示栅格化能力返回失败，元素以零高度占位。
type RasterizationError struct {
	Line int
	ID   string
	Kind string
	Err  error
}

func (e *RasterizationError) Error() string {
	return fmt.Sprintf("line %d: rasterize %s (id=%s): %v", e.Line, e.Kind, e.ID, e.Err)
}

func (e *RasterizationError) Unwrap() error { return e.Err }
