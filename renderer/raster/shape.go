package raster

import (
	"image"
	"math"
	"strings"

	"github.com/fogleman/gg"

	"github.com/ByLCY/whiteboard/dsl"
	"github.com/ByLCY/whiteboard/palette"
)

// RasterizeShape 绘制 rect、circle、ellipse、triangle、line 或 arrow。
// 未给出宽高时按 size 的 5 倍取值；未知形状按矩形处理。
func (r *Raster) RasterizeShape(spec *dsl.ShapeSpec, size int, rgb palette.RGB) (image.Image, error) {
	form := strings.ToLower(spec.Form)
	stroke := math.Max(2, float64(size)/10)
	inset := stroke / 2
	w, h := float64(spec.Width), float64(spec.Height)
	if w <= 0 {
		w = float64(size) * 5
	}
	if h <= 0 {
		switch form {
		case "line":
			h = 0
		case "arrow":
			h = stroke * 4
		default:
			h = w
		}
	}

	if err := checkBitmap(w+stroke, h+stroke); err != nil {
		return nil, err
	}
	dc := gg.NewContext(int(math.Ceil(w+stroke)), int(math.Ceil(h+stroke)))
	dc.SetLineWidth(stroke)

	switch form {
	case "circle":
		d := math.Min(w, h)
		dc.DrawCircle(inset+d/2, inset+d/2, d/2)
	case "ellipse":
		dc.DrawEllipse(inset+w/2, inset+h/2, w/2, h/2)
	case "triangle":
		dc.MoveTo(inset+w/2, inset)
		dc.LineTo(inset+w, inset+h)
		dc.LineTo(inset, inset+h)
		dc.ClosePath()
	case "line":
		dc.DrawLine(inset, inset+h, inset+w, inset)
		dc.SetColor(rgb)
		dc.Stroke()
		return dc.Image(), nil
	case "arrow":
		head := math.Min(stroke*4, w/3)
		dc.DrawLine(inset, inset+h/2, inset+w, inset+h/2)
		dc.SetColor(rgb)
		dc.Stroke()
		dc.MoveTo(inset+w, inset+h/2)
		dc.LineTo(inset+w-head, inset+h/2-head/2)
		dc.LineTo(inset+w-head, inset+h/2+head/2)
		dc.ClosePath()
		dc.Fill()
		return dc.Image(), nil
	default:
		dc.DrawRectangle(inset, inset, w, h)
	}
	if spec.Fill != "" {
		dc.SetColor(palette.Resolve(spec.Fill))
		dc.FillPreserve()
	}
	dc.SetColor(rgb)
	dc.Stroke()
	return dc.Image(), nil
}
