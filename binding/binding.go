// Package binding 将外部数据插入到标记内容与提示词模板中。
//
// 占位符写作 ${path.to.value}，可带缺省值 ${path|fallback}；路径段支持
// 数组下标，例如 ${steps[0].title}。
package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ByLCY/whiteboard/dsl"
)

var placeholder = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate 将文本中的占位符替换为 data 中的值。
// 路径不存在时使用缺省值；既无值也无缺省值时保留原占位符。
func Interpolate(text string, data any) string {
	if !strings.Contains(text, "${") {
		return text
	}
	return placeholder.ReplaceAllStringFunc(text, func(match string) string {
		expr := match[2 : len(match)-1]
		path, fallback, hasFallback := strings.Cut(expr, "|")
		path = strings.TrimSpace(path)
		if path != "" && data != nil {
			if val, ok := Lookup(data, path); ok {
				return format(val)
			}
		}
		if hasFallback {
			return fallback
		}
		return match
	})
}

// Lookup 按点分路径在 JSON 风格的数据（map/slice）中取值。
func Lookup(data any, path string) (any, bool) {
	current := data
	for _, segment := range strings.Split(path, ".") {
		name, indexes, ok := splitSegment(segment)
		if !ok {
			return nil, false
		}
		if name != "" {
			m, isMap := current.(map[string]any)
			if !isMap {
				return nil, false
			}
			if current, ok = m[name]; !ok {
				return nil, false
			}
		}
		for _, idx := range indexes {
			list, isList := current.([]any)
			if !isList || idx < 0 || idx >= len(list) {
				return nil, false
			}
			current = list[idx]
		}
	}
	return current, true
}

func splitSegment(segment string) (string, []int, bool) {
	name, rest, _ := strings.Cut(segment, "[")
	if rest == "" {
		return strings.TrimSpace(name), nil, true
	}
	var indexes []int
	rest = "[" + rest
	for rest != "" {
		if rest[0] != '[' {
			return "", nil, false
		}
		end := strings.IndexByte(rest, ']')
		if end == -1 {
			return "", nil, false
		}
		idx, err := strconv.Atoi(rest[1:end])
		if err != nil {
			return "", nil, false
		}
		indexes = append(indexes, idx)
		rest = rest[end+1:]
	}
	return strings.TrimSpace(name), indexes, true
}

// JSON 数字解码为 float64，整数值按整数输出。
func format(v any) string {
	if f, ok := v.(float64); ok && f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return fmt.Sprint(v)
}

// BindDocument 对文档中所有元素的内容、方程与表格单元格做插值，返回替换的元素数。
// 记录在原处修改，应在布局之前调用。
func BindDocument(doc *dsl.Document, data any) int {
	if doc == nil || data == nil {
		return 0
	}
	changed := 0
	for _, el := range doc.Elements() {
		touched := bind(&el.Content, data)
		if el.Graph != nil {
			touched = bind(&el.Graph.Equation, data) || touched
		}
		if el.Table != nil {
			for i := range el.Table.Headers {
				touched = bind(&el.Table.Headers[i], data) || touched
			}
			for _, row := range el.Table.Rows {
				for i := range row {
					touched = bind(&row[i], data) || touched
				}
			}
		}
		if touched {
			changed++
		}
	}
	return changed
}

func bind(s *string, data any) bool {
	next := Interpolate(*s, data)
	if next == *s {
		return false
	}
	*s = next
	return true
}
