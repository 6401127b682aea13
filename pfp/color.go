package pfp

import (
	"fmt"
	"image/color"

	"golang.org/x/image/colornames"
	"nostrpfp/engine/library"
)

// IDToColor derives a placeholder color from the last 12 hex digits of pubkey.
// Identifiers too short to hold that window give white; a non-hex digit in it gives black.
func IDToColor(pubkey library.Account) color.RGBA {
	return hexToRGB(pubkey)
}

func hexToRGB(hex string) color.RGBA {
	if len(hex) < 12 {
		return colornames.White
	}
	tail := hex[len(hex)-12:]
	var rgb [6]byte
	for i := 0; i < len(tail); i += 2 {
		c1, ok := charToHex(tail[i])
		if !ok {
			return colornames.Black
		}
		c2, ok := charToHex(tail[i+1])
		if !ok {
			return colornames.Black
		}
		rgb[i/2] = c1<<4 | c2
	}
	return color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 0xff}
}

func charToHex(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// HexString formats c as #rrggbb.
func HexString(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
