package raster

import (
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/whiteboard/palette"
)

// ParseLaTeX 输出的路径以 10pt 字号为基准。
const texBaseSize = 10.0

var texMu sync.Mutex // TeX 排版串行执行

// RasterizeMath 排版公式。内容可以是纯公式（无 $ 时整体视为数学模式），
// 也可以是夹杂 $…$ 的文本行。
func (r *Raster) RasterizeMath(formula string, size int, rgb palette.RGB) (image.Image, error) {
	src := texSource(formula)
	if src == "" {
		return nil, fmt.Errorf("公式为空")
	}
	texMu.Lock()
	p, err := canvas.ParseLaTeX(src)
	texMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("排版公式 %q 失败: %w", formula, err)
	}
	scale := float64(size) / texBaseSize
	p = p.Transform(canvas.Identity.Scale(scale, scale))
	b := p.Bounds()
	pad := float64(r.opts.Padding) * pxToMm
	w := b.X1 - b.X0 + 2*pad
	h := b.Y1 - b.Y0 + 2*pad
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("公式 %q 排版结果为空", formula)
	}
	return draw(w, h, func(ctx *canvas.Context) {
		ctx.SetFillColor(colorOf(rgb))
		ctx.DrawPath(pad-b.X0, pad-b.Y0, p)
	})
}

// texSource 转义数学模式之外的 TeX 特殊字符；未闭合的 $ 按普通字符处理。
func texSource(content string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return ""
	}
	if !strings.Contains(content, "$") {
		return "$" + content + "$"
	}
	parts := strings.Split(content, "$")
	if len(parts)%2 == 0 {
		// 奇数个 $：最后一个不成对
		last := len(parts) - 1
		parts[last-1] = parts[last-1] + `\$` + parts[last]
		parts = parts[:last]
	}
	var b strings.Builder
	for i, part := range parts {
		if i%2 == 1 {
			b.WriteString("$" + part + "$")
			continue
		}
		b.WriteString(escapeText(part))
	}
	return b.String()
}

var textEscaper = strings.NewReplacer(
	`%`, `\%`,
	`&`, `\&`,
	`#`, `\#`,
	`_`, `\_`,
	`^`, `\^{}`,
)

func escapeText(s string) string { return textEscaper.Replace(s) }
