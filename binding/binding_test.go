package binding

import (
	"encoding/json"
	"testing"

	"github.com/ByLCY/whiteboard/dsl"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var data any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		t.Fatalf("解析测试数据失败: %v", err)
	}
	return data
}

func TestInterpolate(t *testing.T) {
	data := decode(t, `{"student":{"name":"Ada"},"coef":4,"ratio":0.5,"steps":[{"title":"Power rule"}]}`)
	cases := map[string]string{
		"Hi ${student.name}":            "Hi Ada",
		"$${coef}x$":                    "$4x$",
		"${ratio}":                      "0.5",
		"${steps[0].title}":             "Power rule",
		"${steps[3].title|none}":        "none",
		"${missing}":                    "${missing}",
		"${student.age|unknown} years":  "unknown years",
		"no placeholders":               "no placeholders",
	}
	for in, want := range cases {
		if got := Interpolate(in, data); got != want {
			t.Fatalf("Interpolate(%q) = %q, want %q", in, got, want)
		}
	}
	if got := Interpolate("${a|x}", nil); got != "x" {
		t.Fatalf("无数据时应使用缺省值, got %q", got)
	}
}

func TestBindDocument(t *testing.T) {
	doc, err := dsl.ParseString(`[text id=1] content="Integrate $${coef}x$"
[graph id=2] equation="${coef}*x"
[table id=3] headers="x|${label}" rows="0|${coef}"
[text id=4] content="static"`)
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	n := BindDocument(doc, decode(t, `{"coef":4,"label":"f(x)"}`))
	if n != 3 {
		t.Fatalf("应替换 3 个元素, 实际 %d", n)
	}
	els := doc.Elements()
	if els[0].Content != "Integrate $4x$" || els[1].Graph.Equation != "4*x" {
		t.Fatalf("插值结果错误: %q %q", els[0].Content, els[1].Graph.Equation)
	}
	if els[2].Table.Headers[1] != "f(x)" || els[2].Table.Rows[0][1] != "4" {
		t.Fatalf("表格插值错误: %+v", els[2].Table)
	}
}
