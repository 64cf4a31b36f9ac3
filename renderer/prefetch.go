package renderer

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ByLCY/whiteboard/dsl"
	"github.com/ByLCY/whiteboard/logging"
)

// Prefetch 并发栅格化文档中的已知类型元素，结果留待 Measure 按源顺序合成。
// 单个元素的失败不会中断预取，而是在 Measure 时作为 RasterizationError 报告。
// workers <= 0 时使用 GOMAXPROCS。
func (d *Dispatcher) Prefetch(ctx context.Context, doc *dsl.Document, workers int) error {
	els := doc.Elements()
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]rendered, len(els))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, el := range els {
		if el.Kind == dsl.KindUnknown {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img, err := d.rasterize(gctx, el)
			results[i] = rendered{img: img, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for i, el := range els {
		if el.Kind == dsl.KindUnknown {
			continue
		}
		d.prepared[el] = results[i]
		n++
	}
	logging.For("renderer").Debug("prefetched", "elements", n, "workers", workers)
	return nil
}
