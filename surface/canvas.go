// Package surface holds the off-screen drawing surface that rendered
// elements are composited onto.
package surface

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
)

// Background is the color a fresh or cleared canvas is filled with.
var Background color.Color = color.White

// MaxHeight bounds the allocated height. Composites reaching below it are
// rejected and Reserve clamps to it.
const MaxHeight = 1 << 15

// ErrOutOfBounds is returned by Composite for anchors outside the surface.
var ErrOutOfBounds = errors.New("surface: composite out of bounds")

// Canvas is a fixed-width surface whose height grows as content is
// composited below the current bottom edge. It is append-only within
// a single layout pass.
type Canvas struct {
	dc    *gg.Context
	width int
	used  int
}

// New creates a canvas of the given width with room for heightHint
// pixels before the first growth.
func New(width, heightHint int) *Canvas {
	if width <= 0 {
		width = 1
	}
	heightHint = min(max(heightHint, 1), MaxHeight)
	c := &Canvas{width: width}
	c.dc = blank(width, heightHint)
	return c
}

func blank(w, h int) *gg.Context {
	dc := gg.NewContext(w, h)
	dc.SetColor(Background)
	dc.Clear()
	return dc
}

// Width returns the fixed canvas width.
func (c *Canvas) Width() int { return c.width }

// Height returns the current allocated height, which is at least UsedExtent.
func (c *Canvas) Height() int { return c.dc.Height() }

// UsedExtent returns the lowest row touched by a composite so far.
func (c *Canvas) UsedExtent() int { return c.used }

// Composite draws img with its top-left corner at anchor. A nil or empty
// image is a no-op. Content right of the fixed width is clipped. An image
// above the top edge or reaching below MaxHeight is rejected with
// ErrOutOfBounds and nothing is drawn.
func (c *Canvas) Composite(img image.Image, anchor image.Point) error {
	if img == nil || img.Bounds().Empty() {
		return nil
	}
	dy := img.Bounds().Dy()
	if anchor.Y < 0 || anchor.Y > MaxHeight || dy > MaxHeight-anchor.Y {
		return fmt.Errorf("%w: y=%d height=%d limit=%d", ErrOutOfBounds, anchor.Y, dy, MaxHeight)
	}
	bottom := anchor.Y + dy
	c.grow(bottom)
	// entirely outside the fixed width: nothing visible, extent still counts
	if anchor.X < c.width && anchor.X > -img.Bounds().Dx() {
		c.dc.DrawImage(img, anchor.X, anchor.Y)
	}
	if bottom > c.used {
		c.used = bottom
	}
	return nil
}

// Reserve extends the used extent to bottom without drawing, so that
// regions occupied by zero-area placeholders still count toward the
// exported height. bottom is clamped to MaxHeight.
func (c *Canvas) Reserve(bottom int) {
	bottom = min(bottom, MaxHeight)
	c.grow(bottom)
	if bottom > c.used {
		c.used = bottom
	}
}

// grow reallocates the surface, doubling until bottom fits. Callers keep
// bottom within MaxHeight.
func (c *Canvas) grow(bottom int) {
	h := c.dc.Height()
	if bottom <= h {
		return
	}
	for h < bottom && h < MaxHeight {
		h *= 2
	}
	h = min(h, MaxHeight)
	next := blank(c.width, h)
	next.DrawImage(c.dc.Image(), 0, 0)
	c.dc = next
}

// Clear wipes all content and resets the used extent. The allocated
// height is kept.
func (c *Canvas) Clear() {
	c.dc.SetColor(Background)
	c.dc.Clear()
	c.used = 0
}

// Image returns the whole allocated surface.
func (c *Canvas) Image() image.Image { return c.dc.Image() }

// Cropped returns the region from the top edge down to UsedExtent. An
// empty canvas yields a 1px high strip so encoders always get a valid image.
func (c *Canvas) Cropped() image.Image {
	h := c.used
	if h <= 0 {
		h = 1
	}
	img := c.dc.Image()
	if sub, ok := img.(interface {
		SubImage(r image.Rectangle) image.Image
	}); ok {
		return sub.SubImage(image.Rect(0, 0, c.width, h))
	}
	out := image.NewRGBA(image.Rect(0, 0, c.width, h))
	for y := 0; y < h; y++ {
		for x := 0; x < c.width; x++ {
			out.Set(x, y, img.At(x, y))
		}
	}
	return out
}
