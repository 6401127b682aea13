package pfp

import (
	"image/color"
	"testing"
)

func TestHighlight(t *testing.T) {
	purple := color.RGBA{R: 0x80, B: 0x80, A: 0xff}
	tests := []struct {
		name  string
		h     Highlight
		color color.RGBA
		width float64
	}{
		{"none", HighlightNone{}, black, 0},
		{"nil", nil, black, 0},
		{"main", HighlightMain{}, color.RGBA{R: 0xff, A: 0xff}, 3},
		{"reply", HighlightReply{}, black, 0},
		{"custom", HighlightCustom{Color: purple, LineWidth: 1.5}, purple, 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HighlightColor(tt.h); got != tt.color {
				t.Fatalf("HighlightColor = %+v, want %+v", got, tt.color)
			}
			if got := LineWidth(tt.h); got != tt.width {
				t.Fatalf("LineWidth = %v, want %v", got, tt.width)
			}
		})
	}
}

func TestParseHighlight(t *testing.T) {
	if _, ok := ParseHighlight("main").(HighlightMain); !ok {
		t.Fatal("expected main")
	}
	if _, ok := ParseHighlight("reply").(HighlightReply); !ok {
		t.Fatal("expected reply")
	}
	if _, ok := ParseHighlight("sparkles").(HighlightNone); !ok {
		t.Fatal("expected none")
	}
}
