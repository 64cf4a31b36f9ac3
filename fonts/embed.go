// Package fonts 提供随程序内置的字体数据（Go 字体家族），渲染时无需依赖系统字体。
package fonts

import (
	"fmt"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// 内置字体名称。
const (
	Regular = "regular"
	Bold    = "bold"
	Mono    = "mono"
)

var builtin = map[string][]byte{
	Regular: goregular.TTF,
	Bold:    gobold.TTF,
	Mono:    gomono.TTF,
}

// Load 返回内置字体的字节数据，name 可写为 "embed:mono" 或直接 "mono"。
func Load(name string) ([]byte, error) {
	key := strings.ToLower(strings.TrimPrefix(name, "embed:"))
	data, ok := builtin[key]
	if !ok {
		return nil, fmt.Errorf("读取内置字体 %s 失败: 不存在", name)
	}
	return data, nil
}

var (
	parsedMu sync.Mutex
	parsed   = map[string]*truetype.Font{}
)

// Face 返回指定字号（像素，72 DPI）的 font.Face，解析结果按名称缓存。
func Face(name string, size float64) (font.Face, error) {
	parsedMu.Lock()
	defer parsedMu.Unlock()
	f, ok := parsed[name]
	if !ok {
		data, err := Load(name)
		if err != nil {
			return nil, err
		}
		f, err = truetype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("解析内置字体 %s 失败: %w", name, err)
		}
		parsed[name] = f
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}
