package layout

// 默认的画布与间距参数，单位均为像素。
const (
	DefaultWidth      = 1200
	DefaultHeightHint = 5000
	DefaultTopMargin  = 20
	DefaultLeftMargin = 50
	DefaultGap        = 10
	DefaultLineFactor = 1.5
)

// Options 配置布局阶段的画布宽度、边距与间距。非正值取默认值。
type Options struct {
	Width      int
	HeightHint int
	TopMargin  float64
	LeftMargin float64
	Gap        float64
	LineFactor float64 // 文本类元素的名义高度 = size * LineFactor
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.HeightHint <= 0 {
		o.HeightHint = DefaultHeightHint
	}
	if o.TopMargin <= 0 {
		o.TopMargin = DefaultTopMargin
	}
	if o.LeftMargin <= 0 {
		o.LeftMargin = DefaultLeftMargin
	}
	if o.Gap <= 0 {
		o.Gap = DefaultGap
	}
	if o.LineFactor <= 0 {
		o.LineFactor = DefaultLineFactor
	}
	return o
}
