// Package raster 提供各元素类型的栅格化实现：文本与公式基于 tdewolff/canvas，
// 函数图像、表格与图形基于 gg。
package raster

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/ByLCY/whiteboard/fonts"
	"github.com/ByLCY/whiteboard/palette"
	"github.com/ByLCY/whiteboard/renderer"
)

// 72 DPI 下 1pt 恰好对应 1 像素，字号与像素尺寸一致。
const pxToMm = 25.4 / 72.0

var resolution = canvas.DPI(72)

// MaxBitmapSide 是单个元素位图任一边的像素上限。
const MaxBitmapSide = 8192

// checkBitmap 拒绝超出上限或非有限的位图尺寸（像素）。
func checkBitmap(w, h float64) error {
	if !(w <= MaxBitmapSide && h <= MaxBitmapSide) {
		return fmt.Errorf("位图尺寸 %.0f×%.0f 超出上限 %d", w, h, MaxBitmapSide)
	}
	return nil
}

// Options 配置栅格化参数，单位为像素。
type Options struct {
	MaxWidth int    // 文本折行宽度，<=0 表示不折行
	Padding  int    // 位图四周留白
	Font     string // 正文字体，见 fonts 包
}

// Raster 实现 renderer 的全部栅格化能力。方法可并发调用。
type Raster struct {
	opts Options

	fontMu   sync.Mutex
	families map[string]*canvas.FontFamily
}

var (
	_ renderer.TextRasterizer  = (*Raster)(nil)
	_ renderer.MathRasterizer  = (*Raster)(nil)
	_ renderer.GraphPlotter    = (*Raster)(nil)
	_ renderer.TableRasterizer = (*Raster)(nil)
	_ renderer.ShapeRasterizer = (*Raster)(nil)
)

// New 创建栅格化器。
func New(opts Options) *Raster {
	if opts.Padding < 0 {
		opts.Padding = 0
	}
	if opts.Font == "" {
		opts.Font = fonts.Regular
	}
	return &Raster{opts: opts, families: map[string]*canvas.FontFamily{}}
}

// Capabilities 以同一个 Raster 填充全部能力。
func (r *Raster) Capabilities() renderer.Capabilities {
	return renderer.Capabilities{Text: r, Math: r, Graph: r, Table: r, Shape: r}
}

func (r *Raster) fontFace(name string, size int, rgb palette.RGB) (*canvas.FontFace, error) {
	family, err := r.ensureFontFamily(name)
	if err != nil {
		return nil, err
	}
	return family.Face(float64(size), colorOf(rgb), canvas.FontRegular, canvas.FontNormal), nil
}

func (r *Raster) ensureFontFamily(name string) (*canvas.FontFamily, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	if family, ok := r.families[name]; ok {
		return family, nil
	}
	data, err := fonts.Load(name)
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily(name)
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("加载字体 %s 失败: %w", name, err)
	}
	r.families[name] = family
	return family, nil
}

// draw 在 w×h 毫米的透明画布上执行 fn 并栅格化。
func draw(w, h float64, fn func(ctx *canvas.Context)) (image.Image, error) {
	if err := checkBitmap(w/pxToMm, h/pxToMm); err != nil {
		return nil, err
	}
	c := canvas.New(w, h)
	ctx := canvas.NewContext(c)
	fn(ctx)
	return rasterizer.Draw(c, resolution, canvas.DefaultColorSpace), nil
}

func colorOf(rgb palette.RGB) color.RGBA {
	r, g, b := rgb.Floats()
	return canvas.RGBA(r, g, b, 1.0)
}
