package layout

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// EncodeDebug 将布局结果以缩进 JSON 写入 w。
func EncodeDebug(w io.Writer, res *Result) error {
	if res == nil {
		return nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// WriteDebugJSON 将布局结果输出为 JSON 文件，便于调试或可视化。
func WriteDebugJSON(res *Result, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建调试文件 %s 失败: %w", path, err)
	}
	if err := EncodeDebug(f, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
