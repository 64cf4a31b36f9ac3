// Package palette holds the closed set of named whiteboard colors.
package palette

import (
	"image/color"
	"sort"
	"strings"
)

// RGB 采用 0-255 的分量。
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// RGBA implements color.Color so an RGB can be handed straight to drawing backends.
func (c RGB) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff}.RGBA()
}

// Floats returns the components scaled to [0,1].
func (c RGB) Floats() (float64, float64, float64) {
	return float64(c.R) / 255.0, float64(c.G) / 255.0, float64(c.B) / 255.0
}

// Fallback is the color every unknown name resolves to.
const Fallback = "black"

var entries = map[string]RGB{
	"red":       {255, 0, 0},
	"green":     {0, 255, 0},
	"blue":      {0, 0, 255},
	"black":     {0, 0, 0},
	"white":     {255, 255, 255},
	"grey":      {128, 128, 128},
	"darkred":   {139, 0, 0},
	"darkgreen": {0, 100, 0},
	"purple":    {128, 0, 128},
	"orange":    {255, 165, 0},
	"darkblue":  {0, 0, 139},
	"darkgrey":  {105, 105, 105},
}

// Lookup reports the RGB value for name. Names are matched case-insensitively.
func Lookup(name string) (RGB, bool) {
	c, ok := entries[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// Resolve never fails: unknown or empty names map to black.
func Resolve(name string) RGB {
	if c, ok := Lookup(name); ok {
		return c
	}
	return entries[Fallback]
}

// Names lists the palette keys in sorted order.
func Names() []string {
	out := make([]string, 0, len(entries))
	for name := range entries {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
