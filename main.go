package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/atotto/clipboard"

	"github.com/ByLCY/whiteboard/binding"
	"github.com/ByLCY/whiteboard/dsl"
	"github.com/ByLCY/whiteboard/export"
	"github.com/ByLCY/whiteboard/generate"
	"github.com/ByLCY/whiteboard/layout"
	"github.com/ByLCY/whiteboard/logging"
	"github.com/ByLCY/whiteboard/renderer"
	"github.com/ByLCY/whiteboard/renderer/raster"
	"github.com/ByLCY/whiteboard/surface"
)

// options 汇总一次运行所需的全部参数。
type options struct {
	input      string
	output     string
	format     string
	debugPath  string
	markupPath string
	width      int
	height     int
	workers    int
	data       any
	problem    string
	tweak      string
	model      string
	apiKey     string
	copy       bool
}

func main() {
	cfg := loadConfig(os.Getenv("WHITEBOARD_RC"))

	input := flag.String("in", "", "标记文件路径，- 表示标准输入")
	output := flag.String("out", "output/whiteboard.png", "输出路径")
	format := flag.String("format", cfg.Format, "输出格式 png|pdf，默认取输出文件扩展名")
	width := flag.Int("width", cfg.Width, "画布宽度（像素）")
	height := flag.Int("height", cfg.Height, "画布初始高度（像素），内容超出时自动增长")
	debug := flag.String("debug", "", "布局调试 JSON 输出路径")
	dataJSON := flag.String("data", "", "绑定到标记内容的 JSON 数据")
	problem := flag.String("problem", "", "由模型根据题目描述生成标记")
	tweak := flag.String("tweak", "", "让模型按描述修改标记")
	model := flag.String("model", cfg.Model, "模型名称")
	workers := flag.Int("workers", cfg.Workers, "并发栅格化的协程数，0 表示逐个渲染")
	saveMarkup := flag.String("save-markup", "", "保存最终标记文本的路径")
	copyMarkup := flag.Bool("copy", false, "将最终标记文本复制到剪贴板")
	verbose := flag.Bool("v", false, "输出调试日志")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	opts := options{
		input:      *input,
		output:     cfg.outputPath(*output),
		format:     *format,
		debugPath:  *debug,
		markupPath: *saveMarkup,
		width:      *width,
		height:     *height,
		workers:    *workers,
		problem:    *problem,
		tweak:      *tweak,
		model:      *model,
		apiKey:     os.Getenv("OPENAI_API_KEY"),
		copy:       *copyMarkup,
	}
	if opts.apiKey == "" {
		opts.apiKey = cfg.APIKey
	}
	if *dataJSON != "" {
		if err := json.Unmarshal([]byte(*dataJSON), &opts.data); err != nil {
			log.Fatalf("解析 data JSON 失败: %v", err)
		}
	}
	if opts.input == "" && opts.problem == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, os.Stdin, os.Stderr); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
	reportDone(os.Stderr, "已生成：%s", opts.output)
}

// run 串联标记获取、解析、布局与渲染、导出。
func run(ctx context.Context, opts options, stdin io.Reader, diag io.Writer) error {
	markup, err := obtainMarkup(ctx, opts, stdin)
	if err != nil {
		return err
	}
	if opts.markupPath != "" {
		if err := writeFile(opts.markupPath, []byte(markup+"\n")); err != nil {
			return err
		}
	}
	if opts.copy {
		if err := clipboard.WriteAll(markup); err != nil {
			logging.For("cli").Warn("复制到剪贴板失败", "err", err)
		}
	}

	doc, err := dsl.ParseString(markup)
	if err != nil {
		return fmt.Errorf("解析标记失败: %w", err)
	}
	validation := doc.Validate()
	if n := binding.BindDocument(doc, opts.data); n > 0 {
		logging.For("cli").Debug("data bound", "elements", n)
	}

	format := opts.format
	if format == "" {
		format = filepath.Ext(opts.output)
	}
	exporter, err := export.ForFormat(format)
	if err != nil {
		return err
	}

	canvas, result, err := render(ctx, doc, opts)
	if err != nil {
		return err
	}
	reportWarnings(diag, validation, result.Warnings)

	if opts.debugPath != "" {
		if err := writeDebug(result, opts.debugPath); err != nil {
			return err
		}
	}

	data, err := exporter.Export(canvas)
	if err != nil {
		return fmt.Errorf("导出失败: %w", err)
	}
	return writeFile(opts.output, data)
}

// obtainMarkup 从文件读取标记，或请求模型生成；-tweak 在其基础上再修改一次。
func obtainMarkup(ctx context.Context, opts options, stdin io.Reader) (string, error) {
	var gen *generate.Generator
	if opts.problem != "" || opts.tweak != "" {
		if opts.apiKey == "" {
			return "", fmt.Errorf("使用 -problem 或 -tweak 需要设置 OPENAI_API_KEY")
		}
		gen = generate.NewGenerator(generate.NewOpenAIClient(opts.apiKey, opts.model), 3)
	}

	if opts.problem != "" {
		session := generate.NewSession(gen)
		markup, _, err := session.Submit(ctx, opts.problem)
		if err != nil {
			return "", err
		}
		if opts.tweak != "" {
			if markup, _, err = session.Submit(ctx, opts.tweak); err != nil {
				return "", err
			}
		}
		return markup, nil
	}

	markup, err := readInput(opts.input, stdin)
	if err != nil {
		return "", err
	}
	if opts.tweak != "" {
		return gen.Tweak(ctx, "", markup, opts.tweak)
	}
	return markup, nil
}

func readInput(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("读取标准输入失败: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("无法打开标记文件 %s: %w", path, err)
	}
	return string(data), nil
}

// render 在新画布上执行交错的布局与渲染。
func render(ctx context.Context, doc *dsl.Document, opts options) (*surface.Canvas, *layout.Result, error) {
	engine := layout.NewEngine(layout.Options{Width: opts.width, HeightHint: opts.height})
	eff := engine.Options()

	canvas := surface.New(eff.Width, eff.HeightHint)
	rs := raster.New(raster.Options{MaxWidth: eff.Width - 2*int(eff.LeftMargin)})
	dispatcher := renderer.NewDispatcher(canvas, rs.Capabilities())
	if opts.workers > 0 {
		if err := dispatcher.Prefetch(ctx, doc, opts.workers); err != nil {
			return nil, nil, fmt.Errorf("预渲染失败: %w", err)
		}
	}

	result, err := engine.Run(ctx, doc, dispatcher)
	if err != nil {
		return nil, nil, fmt.Errorf("布局计算失败: %w", err)
	}
	// 文本类元素按名义高度占位，导出范围以布局结果为准
	extent := math.Ceil(result.Extent)
	if extent > surface.MaxHeight {
		logging.For("cli").Warn("内容超出画布高度上限，导出时截断", "extent", extent, "limit", surface.MaxHeight)
		extent = surface.MaxHeight
	}
	canvas.Reserve(int(extent))
	return canvas, result, nil
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入文件 %s 失败: %w", path, err)
	}
	return nil
}
