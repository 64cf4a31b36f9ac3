package raster

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"

	"github.com/fogleman/gg"

	"github.com/ByLCY/whiteboard/dsl"
	"github.com/ByLCY/whiteboard/expr"
	"github.com/ByLCY/whiteboard/fonts"
	"github.com/ByLCY/whiteboard/palette"
)

const (
	graphSamples  = 600
	graphTicks    = 5
	graphMargin   = 30.0
	graphLabelPx  = 11.0
	graphJumpFrac = 0.5 // 相邻采样跨越超过该比例的值域时视为间断
)

var (
	axisColor = color.RGBA{R: 60, G: 60, B: 60, A: 255}
	gridColor = color.RGBA{R: 225, G: 225, B: 225, A: 255}
)

// PlotGraph 在 domain 上绘制 equation 的函数图像，图像尺寸随 size 缩放（size=20 时为 400×300）。
func (r *Raster) PlotGraph(equation string, domain [2]float64, size int, rgb palette.RGB) (image.Image, error) {
	e, err := expr.Compile(equation)
	if err != nil {
		return nil, err
	}
	lo, hi := domain[0], domain[1]
	if !(lo < hi) {
		lo, hi = dsl.DefaultDomain[0], dsl.DefaultDomain[1]
	}

	xs := make([]float64, graphSamples+1)
	ys := make([]float64, graphSamples+1)
	ymin, ymax := math.Inf(1), math.Inf(-1)
	for i := range xs {
		x := lo + (hi-lo)*float64(i)/graphSamples
		y := e.Eval(x)
		xs[i], ys[i] = x, y
		if finite(y) {
			ymin = math.Min(ymin, y)
			ymax = math.Max(ymax, y)
		}
	}
	if math.IsInf(ymin, 1) {
		return nil, fmt.Errorf("%q 在 [%g, %g] 上没有有限取值", equation, lo, hi)
	}
	if ymax-ymin < 1e-9 {
		ymin, ymax = ymin-1, ymax+1
	}
	span := ymax - ymin
	ymin -= span * 0.05
	ymax += span * 0.05

	w := float64(size) * 20
	h := float64(size) * 15
	if err := checkBitmap(w, h); err != nil {
		return nil, err
	}
	plotW, plotH := w-2*graphMargin, h-2*graphMargin
	px := func(x float64) float64 { return graphMargin + (x-lo)/(hi-lo)*plotW }
	py := func(y float64) float64 { return graphMargin + (ymax-y)/(ymax-ymin)*plotH }

	dc := gg.NewContext(int(w), int(h))
	face, err := fonts.Face(fonts.Mono, graphLabelPx)
	if err != nil {
		return nil, err
	}
	dc.SetFontFace(face)

	// 网格与刻度
	dc.SetLineWidth(1)
	for i := 0; i <= graphTicks; i++ {
		f := float64(i) / graphTicks
		gx := lo + (hi-lo)*f
		gy := ymin + (ymax-ymin)*f
		dc.SetColor(gridColor)
		dc.DrawLine(px(gx), graphMargin, px(gx), graphMargin+plotH)
		dc.DrawLine(graphMargin, py(gy), graphMargin+plotW, py(gy))
		dc.Stroke()
		dc.SetColor(axisColor)
		dc.DrawStringAnchored(tickLabel(gx), px(gx), graphMargin+plotH+4, 0.5, 1)
		dc.DrawStringAnchored(tickLabel(gy), graphMargin-4, py(gy), 1, 0.5)
	}

	// 坐标轴：原点在范围内时穿过原点，否则贴边
	ax := math.Min(math.Max(0, lo), hi)
	ay := math.Min(math.Max(0, ymin), ymax)
	dc.SetColor(axisColor)
	dc.SetLineWidth(1.5)
	dc.DrawLine(px(lo), py(ay), px(hi), py(ay))
	dc.DrawLine(px(ax), py(ymin), px(ax), py(ymax))
	dc.Stroke()

	// 曲线
	dc.SetColor(rgb)
	dc.SetLineWidth(math.Max(2, float64(size)/10))
	pen := false
	for i := range xs {
		if !finite(ys[i]) || (pen && math.Abs(ys[i]-ys[i-1]) > graphJumpFrac*(ymax-ymin)) {
			if pen {
				dc.Stroke()
			}
			pen = false
			if !finite(ys[i]) {
				continue
			}
		}
		if !pen {
			dc.MoveTo(px(xs[i]), py(ys[i]))
			pen = true
			continue
		}
		dc.LineTo(px(xs[i]), py(ys[i]))
	}
	if pen {
		dc.Stroke()
	}
	return dc.Image(), nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func tickLabel(v float64) string {
	if math.Abs(v) < 1e-9 {
		v = 0
	}
	return strconv.FormatFloat(v, 'g', 3, 64)
}
