// Package renderer 将已定位的元素分发到各类型的栅格化能力，并把结果合成到画布上。
package renderer

import (
	"image"

	"github.com/ByLCY/whiteboard/dsl"
	"github.com/ByLCY/whiteboard/palette"
	"github.com/ByLCY/whiteboard/surface"
)

// Exporter 将画布的已用区域输出为最终文件，例如 PNG 或 PDF。
// Export 返回生成的二进制数据以及可能的错误。
type Exporter interface {
	Export(c *surface.Canvas) ([]byte, error)
}

// TextRasterizer 绘制纯文本（text 与 annotation 共用）。
type TextRasterizer interface {
	RasterizeText(content string, size int, rgb palette.RGB) (image.Image, error)
}

// MathRasterizer 将公式排版为位图。
type MathRasterizer interface {
	RasterizeMath(formula string, size int, rgb palette.RGB) (image.Image, error)
}

// GraphPlotter 在给定定义域上绘制函数图像。
type GraphPlotter interface {
	PlotGraph(equation string, domain [2]float64, size int, rgb palette.RGB) (image.Image, error)
}

// TableRasterizer 绘制表格。
type TableRasterizer interface {
	RasterizeTable(spec *dsl.TableSpec, size int, rgb palette.RGB) (image.Image, error)
}

// ShapeRasterizer 绘制基本图形。
type ShapeRasterizer interface {
	RasterizeShape(spec *dsl.ShapeSpec, size int, rgb palette.RGB) (image.Image, error)
}

// Capabilities 汇总各元素类型的栅格化实现。
// Table 与 Shape 为扩展点，为空时视为不绘制（零面积），不报错。
type Capabilities struct {
	Text  TextRasterizer
	Math  MathRasterizer
	Graph GraphPlotter
	Table TableRasterizer
	Shape ShapeRasterizer
}
