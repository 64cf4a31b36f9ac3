package raster

import (
	"image"
	"math"
	"strings"
	"unicode"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/whiteboard/palette"
)

// RasterizeText 绘制单段文本，超出 MaxWidth 时贪心折行，尊重显式换行。
func (r *Raster) RasterizeText(content string, size int, rgb palette.RGB) (image.Image, error) {
	face, err := r.fontFace(r.opts.Font, size, rgb)
	if err != nil {
		return nil, err
	}
	limit := math.MaxFloat64
	pad := float64(r.opts.Padding) * pxToMm
	if r.opts.MaxWidth > 0 {
		limit = math.Max(float64(r.opts.MaxWidth)*pxToMm-2*pad, 1)
	}
	lines := wrapLines(content, limit, face)

	metrics := face.Metrics()
	lineHeight := metrics.LineHeight
	widest := 0.0
	for _, ln := range lines {
		widest = math.Max(widest, face.TextWidth(ln))
	}
	w := widest + 2*pad
	h := float64(len(lines))*lineHeight + 2*pad
	if w <= 0 {
		w = pxToMm
	}
	return draw(w, h, func(ctx *canvas.Context) {
		ctx.SetCoordSystem(canvas.CartesianIV) // 左上角为原点
		cursorY := pad
		for _, ln := range lines {
			// 基线：行顶加上升部
			ctx.DrawText(pad, cursorY+metrics.Ascent, canvas.NewTextLine(face, ln, canvas.Left))
			cursorY += lineHeight
		}
	})
}

// wrapLines 优先在空白处断行，单词本身超宽时按字符拆分。limit 单位为毫米。
func wrapLines(content string, limit float64, face *canvas.FontFace) []string {
	var lines []string
	var b strings.Builder
	current := 0.0
	emit := func() {
		lines = append(lines, strings.TrimRightFunc(b.String(), unicode.IsSpace))
		b.Reset()
		current = 0
	}
	for _, token := range tokenize(content) {
		if token == "\n" {
			emit()
			continue
		}
		tw := face.TextWidth(token)
		if current > 0 && current+tw > limit {
			emit()
			if strings.TrimSpace(token) == "" {
				continue
			}
		}
		if tw <= limit {
			b.WriteString(token)
			current += tw
			continue
		}
		for _, chunk := range splitByWidth(token, limit, face) {
			cw := face.TextWidth(chunk)
			if current > 0 && current+cw > limit {
				emit()
			}
			b.WriteString(chunk)
			current += cw
		}
	}
	emit()
	return lines
}

// tokenize 把内容切成交替的空白与非空白片段，换行单独成片。
func tokenize(s string) []string {
	var tokens []string
	var b strings.Builder
	lastSpace := false
	flush := func() {
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	for _, r := range s {
		if r == '\r' {
			continue
		}
		if r == '\n' {
			flush()
			tokens = append(tokens, "\n")
			continue
		}
		space := unicode.IsSpace(r)
		if b.Len() > 0 && space != lastSpace {
			flush()
		}
		lastSpace = space
		b.WriteRune(r)
	}
	flush()
	return tokens
}

func splitByWidth(token string, limit float64, face *canvas.FontFace) []string {
	var parts []string
	var b strings.Builder
	for _, r := range token {
		b.WriteRune(r)
		if b.Len() > 1 && face.TextWidth(b.String()) > limit {
			runes := []rune(b.String())
			parts = append(parts, string(runes[:len(runes)-1]))
			b.Reset()
			b.WriteRune(r)
		}
	}
	if b.Len() > 0 {
		parts = append(parts, b.String())
	}
	return parts
}
