package pfp

import (
	"image/color"

	"golang.org/x/image/colornames"
)

// Highlight is the ring drawn around a profile picture. It is one of
// HighlightNone, HighlightMain, HighlightReply or HighlightCustom.
type Highlight interface {
	ringColor() color.RGBA
	lineWidth() float64
}

type HighlightNone struct{}

// HighlightMain marks the author of the focused note.
type HighlightMain struct{}

type HighlightReply struct{}

type HighlightCustom struct {
	Color     color.RGBA
	LineWidth float64
}

func (HighlightNone) ringColor() color.RGBA  { return colornames.Black }
func (HighlightMain) ringColor() color.RGBA  { return colornames.Red }
func (HighlightReply) ringColor() color.RGBA { return colornames.Black }
func (h HighlightCustom) ringColor() color.RGBA {
	return h.Color
}

func (HighlightNone) lineWidth() float64  { return 0 }
func (HighlightMain) lineWidth() float64  { return 3 }
func (HighlightReply) lineWidth() float64 { return 0 }
func (h HighlightCustom) lineWidth() float64 {
	return h.LineWidth
}

// HighlightColor returns the ring color. A nil Highlight is treated as HighlightNone.
func HighlightColor(h Highlight) color.RGBA {
	if h == nil {
		h = HighlightNone{}
	}
	return h.ringColor()
}

// LineWidth returns the ring width in points.
func LineWidth(h Highlight) float64 {
	if h == nil {
		h = HighlightNone{}
	}
	return h.lineWidth()
}

// ParseHighlight maps "main", "reply" and "none" to their variants. Anything else is HighlightNone.
func ParseHighlight(s string) Highlight {
	switch s {
	case "main":
		return HighlightMain{}
	case "reply":
		return HighlightReply{}
	}
	return HighlightNone{}
}
