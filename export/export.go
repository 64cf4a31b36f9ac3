// Package export 将画布的已用区域编码为 PNG 或 PDF。
package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fogleman/gg"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/whiteboard/renderer"
	"github.com/ByLCY/whiteboard/surface"
)

// PNG 输出裁剪到已用高度的 PNG。
type PNG struct{}

// PDF 输出单页 PDF，页面尺寸等于裁剪后的位图（按 DPI 换算为毫米）。
type PDF struct {
	DPI     float64
	Title   string
	Subject string
	Author  string
	Creator string
}

var (
	_ renderer.Exporter = PNG{}
	_ renderer.Exporter = PDF{}
)

// ForFormat 按名称返回导出器，支持 png 与 pdf。
func ForFormat(format string) (renderer.Exporter, error) {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "", "png":
		return PNG{}, nil
	case "pdf":
		return PDF{Creator: "whiteboard"}, nil
	}
	return nil, fmt.Errorf("不支持的输出格式 %q（可选 png、pdf）", format)
}

// Export 实现 renderer.Exporter。
func (PNG) Export(c *surface.Canvas) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("画布为空")
	}
	dc := gg.NewContextForImage(c.Cropped())
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("编码 PNG 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// Export 实现 renderer.Exporter。
func (p PDF) Export(c *surface.Canvas) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("画布为空")
	}
	dpi := p.DPI
	if dpi <= 0 {
		dpi = 96
	}
	img := c.Cropped()
	b := img.Bounds()
	res := canvas.DPI(dpi)
	w := float64(b.Dx()) / res.DPMM()
	h := float64(b.Dy()) / res.DPMM()

	page := canvas.New(w, h)
	ctx := canvas.NewContext(page)
	ctx.DrawImage(0, 0, img, res)

	var buf bytes.Buffer
	writer := pdf.New(&buf, w, h, nil)
	writer.SetInfo(p.Title, p.Subject, "", p.Author, p.Creator)
	page.RenderTo(writer)
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}
