package raster

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/ByLCY/whiteboard/dsl"
	"github.com/ByLCY/whiteboard/fonts"
	"github.com/ByLCY/whiteboard/palette"
)

const tableBorderWidth = 1.0

var headerFill = color.RGBA{R: 0xf8, G: 0xf8, B: 0xf8, A: 0xff}

// RasterizeTable 绘制表格：表头行浅灰底，列宽取各列最宽单元格。
func (r *Raster) RasterizeTable(spec *dsl.TableSpec, size int, rgb palette.RGB) (image.Image, error) {
	rows := make([][]string, 0, len(spec.Rows)+1)
	if len(spec.Headers) > 0 {
		rows = append(rows, spec.Headers)
	}
	rows = append(rows, spec.Rows...)
	cols := 0
	for _, row := range rows {
		cols = max(cols, len(row))
	}
	if cols == 0 {
		return nil, nil
	}

	cellPad := float64(size) / 2
	rowH := float64(size)*1.5 + cellPad
	height := rowH*float64(len(rows)) + tableBorderWidth
	if err := checkBitmap(0, height); err != nil {
		return nil, err
	}

	face, err := fonts.Face(r.opts.Font, float64(size))
	if err != nil {
		return nil, fmt.Errorf("创建表格字体失败: %w", err)
	}
	// 表头使用粗体
	headerFace, err := fonts.Face(fonts.Bold, float64(size))
	if err != nil {
		return nil, fmt.Errorf("创建表头字体失败: %w", err)
	}
	faceOf := func(ri int) font.Face {
		if ri == 0 && len(spec.Headers) > 0 {
			return headerFace
		}
		return face
	}
	measure := gg.NewContext(1, 1)
	widths := make([]float64, cols)
	for ri, row := range rows {
		measure.SetFontFace(faceOf(ri))
		for i, cell := range row {
			w, _ := measure.MeasureString(cell)
			widths[i] = math.Max(widths[i], w+2*cellPad)
		}
	}
	total := tableBorderWidth
	for _, w := range widths {
		total += w
	}

	if err := checkBitmap(total, height); err != nil {
		return nil, err
	}
	dc := gg.NewContext(int(math.Ceil(total)), int(math.Ceil(height)))
	dc.SetLineWidth(tableBorderWidth)
	half := tableBorderWidth / 2
	for ri, row := range rows {
		x := half
		y := half + float64(ri)*rowH
		header := ri == 0 && len(spec.Headers) > 0
		dc.SetFontFace(faceOf(ri))
		for ci := 0; ci < cols; ci++ {
			dc.DrawRectangle(x, y, widths[ci], rowH)
			if header {
				dc.SetColor(headerFill)
			} else {
				dc.SetColor(color.White)
			}
			dc.FillPreserve()
			dc.SetColor(rgb)
			dc.Stroke()
			if ci < len(row) {
				dc.DrawStringAnchored(row[ci], x+cellPad, y+rowH/2, 0, 0.35)
			}
			x += widths[ci]
		}
	}
	return dc.Image(), nil
}
