package raster

import (
	"image"
	"strings"
	"testing"

	"github.com/ByLCY/whiteboard/dsl"
	"github.com/ByLCY/whiteboard/fonts"
	"github.com/ByLCY/whiteboard/palette"
)

var blue = palette.Resolve("blue")

func inked(img image.Image) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a > 0 {
				return true
			}
		}
	}
	return false
}

func TestRasterizeTextWraps(t *testing.T) {
	r := New(Options{MaxWidth: 200})
	one, err := r.RasterizeText("Hello", 20, blue)
	if err != nil {
		t.Fatalf("渲染文本失败: %v", err)
	}
	if !inked(one) {
		t.Fatalf("文本位图为空")
	}
	long, err := r.RasterizeText(strings.Repeat("integral ", 20), 20, blue)
	if err != nil {
		t.Fatalf("渲染长文本失败: %v", err)
	}
	if long.Bounds().Dx() > 201 {
		t.Fatalf("折行后宽度应不超过 MaxWidth, 实际 %d", long.Bounds().Dx())
	}
	if long.Bounds().Dy() < 3*one.Bounds().Dy() {
		t.Fatalf("长文本应折成多行: %d vs %d", long.Bounds().Dy(), one.Bounds().Dy())
	}
}

func TestWrapLinesKeepsExplicitBreaks(t *testing.T) {
	r := New(Options{})
	face, err := r.fontFace(fonts.Regular, 20, blue)
	if err != nil {
		t.Fatalf("创建字体失败: %v", err)
	}
	lines := wrapLines("first line\nsecond", 1e9, face)
	if len(lines) != 2 || lines[0] != "first line" || lines[1] != "second" {
		t.Fatalf("显式换行处理错误: %q", lines)
	}
	narrow := wrapLines("abcdefghij", face.TextWidth("abc"), face)
	if len(narrow) < 3 {
		t.Fatalf("超宽单词应按字符拆分: %q", narrow)
	}
}

func TestTexSource(t *testing.T) {
	cases := map[string]string{
		`\int 4x \, dx`:                 `$\int 4x \, dx$`,
		`$x^2$`:                         `$x^2$`,
		`Find the integral of $4x$`:     `Find the integral of $4x$`,
		`50% of $x_1$ & more`:           `50\% of $x_1$ \& more`,
		`cost $5 and $x$`:               `cost $5 and $x\$`,
		`  `:                            ``,
	}
	for in, want := range cases {
		if got := texSource(in); got != want {
			t.Fatalf("texSource(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRasterizeMathScalesWithSize(t *testing.T) {
	r := New(Options{})
	small, err := r.RasterizeMath(`$\int 4x \, dx$`, 20, blue)
	if err != nil {
		t.Fatalf("排版公式失败: %v", err)
	}
	large, err := r.RasterizeMath(`$\int 4x \, dx$`, 40, blue)
	if err != nil {
		t.Fatalf("排版公式失败: %v", err)
	}
	if !inked(small) {
		t.Fatalf("公式位图为空")
	}
	if large.Bounds().Dy() <= small.Bounds().Dy() {
		t.Fatalf("字号加倍后公式应更高: %d vs %d", large.Bounds().Dy(), small.Bounds().Dy())
	}
}

func TestPlotGraph(t *testing.T) {
	r := New(Options{})
	img, err := r.PlotGraph("x^2 - 1", [2]float64{-3, 3}, 20, blue)
	if err != nil {
		t.Fatalf("绘图失败: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 300 {
		t.Fatalf("size=20 时图像应为 400x300, 实际 %v", b)
	}
	if _, err := r.PlotGraph("sqrt(x)", [2]float64{-5, -1}, 20, blue); err == nil {
		t.Fatalf("无有限取值时应报错")
	}
	if _, err := r.PlotGraph("x +", dsl.DefaultDomain, 20, blue); err == nil {
		t.Fatalf("非法方程应报错")
	}
	if _, err := r.PlotGraph("1/x", [2]float64{3, 3}, 20, blue); err != nil {
		t.Fatalf("退化定义域应回退到默认值: %v", err)
	}
}

func TestRasterizeTable(t *testing.T) {
	r := New(Options{})
	spec := &dsl.TableSpec{Headers: []string{"x", "f(x)"}, Rows: [][]string{{"0", "1"}, {"1", "2"}, {"2"}}}
	img, err := r.RasterizeTable(spec, 20, blue)
	if err != nil {
		t.Fatalf("绘制表格失败: %v", err)
	}
	if img.Bounds().Dy() < 4*30 {
		t.Fatalf("四行表格高度过小: %v", img.Bounds())
	}
	if img, _ := r.RasterizeTable(&dsl.TableSpec{}, 20, blue); img != nil {
		t.Fatalf("空表格不应绘制")
	}
}

func TestRasterizeShape(t *testing.T) {
	r := New(Options{})
	circle, err := r.RasterizeShape(&dsl.ShapeSpec{Form: "circle", Width: 40, Height: 40, Fill: "orange"}, 20, blue)
	if err != nil {
		t.Fatalf("绘制图形失败: %v", err)
	}
	if b := circle.Bounds(); b.Dx() != 42 || b.Dy() != 42 {
		t.Fatalf("圆形尺寸错误: %v", b)
	}
	if !inked(circle) {
		t.Fatalf("圆形位图为空")
	}
	rect, _ := r.RasterizeShape(&dsl.ShapeSpec{Form: "rect"}, 20, blue)
	if b := rect.Bounds(); b.Dx() != 102 || b.Dy() != 102 {
		t.Fatalf("缺省矩形尺寸应为 size*5: %v", b)
	}
	line, _ := r.RasterizeShape(&dsl.ShapeSpec{Form: "line", Width: 80}, 20, blue)
	if line.Bounds().Dy() != 2 {
		t.Fatalf("水平线只占线宽: %v", line.Bounds())
	}
}

func TestOversizedBitmapsAreErrors(t *testing.T) {
	r := New(Options{})
	huge := 100000000
	if _, err := r.PlotGraph("x", dsl.DefaultDomain, huge, blue); err == nil || !strings.Contains(err.Error(), "上限") {
		t.Fatalf("超大函数图像应报错: %v", err)
	}
	spec := &dsl.TableSpec{Headers: []string{"a"}, Rows: [][]string{{"1"}}}
	if _, err := r.RasterizeTable(spec, huge, blue); err == nil {
		t.Fatalf("超大表格应报错")
	}
	if _, err := r.RasterizeShape(&dsl.ShapeSpec{Form: "rect", Width: 1 << 30}, 20, blue); err == nil {
		t.Fatalf("超大图形应报错")
	}
	if _, err := r.RasterizeShape(&dsl.ShapeSpec{Form: "circle"}, huge, blue); err == nil {
		t.Fatalf("按 size 推算的超大图形应报错")
	}
	if _, err := r.RasterizeText("x", huge, blue); err == nil {
		t.Fatalf("超大文本应报错")
	}
	line, err := r.RasterizeShape(&dsl.ShapeSpec{Form: "line", Width: MaxBitmapSide - 2}, 20, blue)
	if err != nil || line.Bounds().Dx() != MaxBitmapSide {
		t.Fatalf("上限以内的图形应正常绘制: %v", err)
	}
}

func TestTableHeaderIsBold(t *testing.T) {
	r := New(Options{})
	ink := func(img image.Image) int {
		n := 0
		b := img.Bounds()
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				if cr, _, cb, _ := img.At(x, y).RGBA(); cr < 0x6000 && cb > 0x9000 {
					n++
				}
			}
		}
		return n
	}
	header, err := r.RasterizeTable(&dsl.TableSpec{Headers: []string{"mmmmmmmm"}}, 40, blue)
	if err != nil {
		t.Fatalf("绘制表格失败: %v", err)
	}
	body, err := r.RasterizeTable(&dsl.TableSpec{Rows: [][]string{{"mmmmmmmm"}}}, 40, blue)
	if err != nil {
		t.Fatalf("绘制表格失败: %v", err)
	}
	if ink(header) <= ink(body) {
		t.Fatalf("表头应使用粗体: header=%d body=%d", ink(header), ink(body))
	}
}
