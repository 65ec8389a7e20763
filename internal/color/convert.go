// Package color holds the color math behind palettes and harmonies.
package color

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var hexPattern = regexp.MustCompile(`^#?([a-fA-F0-9]{2})([a-fA-F0-9]{2})([a-fA-F0-9]{2})$`)

type RGB struct {
	R, G, B uint8
}

// HSL uses degrees for H and percentages for S and L.
type HSL struct {
	H, S, L float64
}

// HexToRGB parses "#rrggbb" or "rrggbb".
func HexToRGB(hex string) (RGB, error) {
	m := hexPattern.FindStringSubmatch(strings.TrimSpace(hex))
	if m == nil {
		return RGB{}, fmt.Errorf("invalid hex color %q", hex)
	}
	var out [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseUint(m[i+1], 16, 8)
		if err != nil {
			return RGB{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
		}
		out[i] = uint8(v)
	}
	return RGB{R: out[0], G: out[1], B: out[2]}, nil
}

func IsHex(s string) bool {
	return hexPattern.MatchString(s) && strings.HasPrefix(s, "#")
}

func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c RGB) String() string {
	return fmt.Sprintf("%d, %d, %d", c.R, c.G, c.B)
}

func RGBToHSL(c RGB) HSL {
	r := float64(c.R) / 255
	g := float64(c.G) / 255
	b := float64(c.B) / 255

	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	l := (max + min) / 2

	var h, s float64
	if max != min {
		d := max - min
		if l > 0.5 {
			s = d / (2 - max - min)
		} else {
			s = d / (max + min)
		}
		switch max {
		case r:
			h = (g - b) / d
			if g < b {
				h += 6
			}
		case g:
			h = (b-r)/d + 2
		default:
			h = (r-g)/d + 4
		}
		h /= 6
	}
	return HSL{H: h * 360, S: s * 100, L: l * 100}
}

// HSLToRGB uses the closed form f(n) = l - a*max(-1, min(k-3, 9-k, 1)).
func HSLToRGB(c HSL) RGB {
	s := c.S / 100
	l := c.L / 100
	h := normalizeHue(c.H)
	a := s * math.Min(l, 1-l)

	f := func(n float64) uint8 {
		k := math.Mod(n+h/30, 12)
		v := l - a*math.Max(-1, math.Min(k-3, math.Min(9-k, 1)))
		return uint8(clamp(math.Floor(255*v+0.5), 0, 255))
	}
	return RGB{R: f(0), G: f(8), B: f(4)}
}

func HSLToHex(c HSL) string {
	return HSLToRGB(c).Hex()
}

// Rotate shifts the hue by deg, wrapping into [0, 360).
func (c HSL) Rotate(deg float64) HSL {
	c.H = normalizeHue(c.H + deg)
	return c
}

func normalizeHue(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
