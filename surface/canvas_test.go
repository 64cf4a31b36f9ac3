package surface

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func sameColor(a, b color.Color) bool {
	r1, g1, b1, a1 := a.RGBA()
	r2, g2, b2, a2 := b.RGBA()
	return r1 == r2 && g1 == g2 && b1 == b2 && a1 == a2
}

func TestCompositeTracksExtent(t *testing.T) {
	c := New(200, 100)
	if c.UsedExtent() != 0 {
		t.Fatalf("new canvas should be empty, extent=%d", c.UsedExtent())
	}
	c.Composite(solid(10, 20, color.Black), image.Pt(5, 30))
	if c.UsedExtent() != 50 {
		t.Fatalf("expected extent 50, got %d", c.UsedExtent())
	}
	c.Composite(solid(10, 5, color.Black), image.Pt(5, 0))
	if c.UsedExtent() != 50 {
		t.Fatalf("extent must never shrink, got %d", c.UsedExtent())
	}
	if !sameColor(c.Image().At(6, 31), color.Black) {
		t.Fatalf("pixel not composited")
	}
	if !sameColor(c.Image().At(100, 90), color.White) {
		t.Fatalf("background should be white")
	}
}

func TestCanvasGrowsByDoubling(t *testing.T) {
	c := New(50, 40)
	red := color.RGBA{R: 255, A: 255}
	c.Composite(solid(4, 4, red), image.Pt(0, 0))
	c.Composite(solid(4, 10, color.Black), image.Pt(0, 150))
	if c.Height() != 160 {
		t.Fatalf("expected height 160 after doubling, got %d", c.Height())
	}
	if c.Width() != 50 {
		t.Fatalf("width must stay fixed, got %d", c.Width())
	}
	if !sameColor(c.Image().At(1, 1), red) {
		t.Fatalf("existing content lost while growing")
	}
}

func TestClearResetsContent(t *testing.T) {
	c := New(20, 20)
	c.Composite(solid(5, 5, color.Black), image.Pt(0, 0))
	c.Clear()
	if c.UsedExtent() != 0 {
		t.Fatalf("clear should reset extent")
	}
	if !sameColor(c.Image().At(1, 1), color.White) {
		t.Fatalf("clear should wipe pixels")
	}
}

func TestCroppedAndReserve(t *testing.T) {
	c := New(30, 100)
	if b := c.Cropped().Bounds(); b.Dx() != 30 || b.Dy() != 1 {
		t.Fatalf("empty canvas crop should be 30x1, got %v", b)
	}
	c.Composite(solid(3, 12, color.Black), image.Pt(0, 8))
	c.Reserve(40)
	if b := c.Cropped().Bounds(); b.Dx() != 30 || b.Dy() != 40 {
		t.Fatalf("unexpected crop bounds %v", b)
	}
	c.Composite(nil, image.Pt(0, 500))
	if c.UsedExtent() != 40 {
		t.Fatalf("nil composite must be a no-op")
	}
}

func TestCompositeRejectsAnchorsBeyondMaxHeight(t *testing.T) {
	c := New(40, 20)
	for _, y := range []int{9e18, 4e18, MaxHeight, -5} {
		err := c.Composite(solid(4, 4, color.Black), image.Pt(0, y))
		if !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("y=%d: expected ErrOutOfBounds, got %v", y, err)
		}
	}
	if c.Height() != 20 || c.UsedExtent() != 0 {
		t.Fatalf("rejected composites must not touch the surface: height=%d extent=%d", c.Height(), c.UsedExtent())
	}
	if err := c.Composite(solid(4, 4, color.Black), image.Pt(0, MaxHeight-4)); err != nil {
		t.Fatalf("composite ending exactly at the limit should fit: %v", err)
	}
	if c.Height() != MaxHeight || c.UsedExtent() != MaxHeight {
		t.Fatalf("growth must stop at MaxHeight: height=%d extent=%d", c.Height(), c.UsedExtent())
	}
}

func TestReserveClampsAndFarRightIsClipped(t *testing.T) {
	c := New(40, 1<<20)
	if c.Height() != MaxHeight {
		t.Fatalf("height hint should be clamped, got %d", c.Height())
	}
	c.Reserve(4e18)
	if c.UsedExtent() != MaxHeight {
		t.Fatalf("reserve should clamp to MaxHeight, got %d", c.UsedExtent())
	}

	c = New(40, 20)
	if err := c.Composite(solid(4, 4, color.Black), image.Pt(4e18, 2)); err != nil {
		t.Fatalf("content right of the width is clipped, not an error: %v", err)
	}
	if c.UsedExtent() != 6 || !sameColor(c.Image().At(39, 3), color.White) {
		t.Fatalf("clipped composite should only advance the extent")
	}
}
