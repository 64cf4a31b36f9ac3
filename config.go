package main

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ByLCY/whiteboard/layout"
)

// Config 保存 ~/.whiteboardrc 中的默认值，命令行参数优先。
type Config struct {
	Width   int
	Height  int
	Format  string
	Model   string
	Workers int
	OutDir  string
	APIKey  string
}

func defaultConfig() *Config {
	return &Config{
		Width:  layout.DefaultWidth,
		Height: layout.DefaultHeightHint,
	}
}

// loadConfig 读取 rc 文件；文件不存在或无法读取时返回默认值。
func loadConfig(path string) *Config {
	config := defaultConfig()
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return config
		}
		path = filepath.Join(home, ".whiteboardrc")
	}
	file, err := os.Open(path)
	if err != nil {
		return config
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.Trim(strings.TrimSpace(value), `"`)

		switch key {
		case "width":
			if n, err := strconv.Atoi(value); err == nil && n > 0 {
				config.Width = n
			}
		case "height", "height_hint":
			if n, err := strconv.Atoi(value); err == nil && n > 0 {
				config.Height = n
			}
		case "format":
			config.Format = strings.ToLower(value)
		case "model":
			config.Model = value
		case "workers":
			if n, err := strconv.Atoi(value); err == nil && n >= 0 {
				config.Workers = n
			}
		case "outdir", "out_dir", "output_directory":
			if strings.HasPrefix(value, "~") {
				if home, err := os.UserHomeDir(); err == nil {
					value = filepath.Join(home, strings.TrimPrefix(value, "~"))
				}
			}
			config.OutDir = value
		case "api_key", "openai_api_key":
			config.APIKey = value
		}
	}
	return config
}

// outputPath 将相对输出路径放到 OutDir 下。
func (c *Config) outputPath(name string) string {
	if c.OutDir == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.OutDir, name)
}
