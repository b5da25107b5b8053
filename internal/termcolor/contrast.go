package termcolor

import "math"

type RGB struct {
	R uint8
	G uint8
	B uint8
}

func (c RGB) array() [3]uint8 { return [3]uint8{c.R, c.G, c.B} }

var (
	black = RGB{0, 0, 0}
	white = RGB{255, 255, 255}
)

// relative luminance per WCAG 2.x
func luminance(c RGB) float64 {
	lin := func(v uint8) float64 {
		f := float64(v) / 255
		if f <= 0.04045 {
			return f / 12.92
		}
		return math.Pow((f+0.055)/1.055, 2.4)
	}
	return 0.2126*lin(c.R) + 0.7152*lin(c.G) + 0.0722*lin(c.B)
}

func ContrastRatio(fg, bg RGB) float64 {
	l1, l2 := luminance(fg), luminance(bg)
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}

// TextOn picks black or white, whichever reads better on bg.
func TextOn(bg RGB) RGB {
	onBlack := ContrastRatio(black, bg)
	if onBlack >= 4.5 || onBlack >= ContrastRatio(white, bg) {
		return black
	}
	return white
}
