package color

import (
	"image"
	"sort"
)

const (
	// every sampleStep-th pixel is considered
	sampleStep = 10
	minAlpha   = 125
	whiteLimit = 250
)

type box struct {
	pixels []RGB
}

func (b *box) channelRange() (channel int, spread int) {
	lo := [3]int{255, 255, 255}
	hi := [3]int{0, 0, 0}
	for _, p := range b.pixels {
		for i, v := range [3]int{int(p.R), int(p.G), int(p.B)} {
			if v < lo[i] {
				lo[i] = v
			}
			if v > hi[i] {
				hi[i] = v
			}
		}
	}
	for i := 0; i < 3; i++ {
		if hi[i]-lo[i] > spread {
			channel, spread = i, hi[i]-lo[i]
		}
	}
	return channel, spread
}

// split cuts the box at the midpoint of its widest channel. Both halves are
// non-empty whenever spread > 0.
func (b *box) split() (*box, *box) {
	channel, _ := b.channelRange()
	value := func(p RGB) int {
		switch channel {
		case 0:
			return int(p.R)
		case 1:
			return int(p.G)
		}
		return int(p.B)
	}
	lo, hi := 255, 0
	for _, p := range b.pixels {
		v := value(p)
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	cut := (lo + hi) / 2

	left := &box{}
	right := &box{}
	for _, p := range b.pixels {
		if value(p) <= cut {
			left.pixels = append(left.pixels, p)
		} else {
			right.pixels = append(right.pixels, p)
		}
	}
	return left, right
}

func (b *box) average() RGB {
	var r, g, bl int
	for _, p := range b.pixels {
		r += int(p.R)
		g += int(p.G)
		bl += int(p.B)
	}
	n := len(b.pixels)
	return RGB{
		R: uint8((r + n/2) / n),
		G: uint8((g + n/2) / n),
		B: uint8((bl + n/2) / n),
	}
}

// ExtractPalette returns up to count dominant colors of img, most common
// first. Transparent and near-white pixels are ignored.
func ExtractPalette(img image.Image, count int) []string {
	if img == nil || count <= 0 {
		return nil
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	total := width * bounds.Dy()

	root := &box{}
	for i := 0; i < total; i += sampleStep {
		x := bounds.Min.X + i%width
		y := bounds.Min.Y + i/width
		r, g, b, a := img.At(x, y).RGBA()
		if a>>8 < minAlpha {
			continue
		}
		p := RGB{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}
		if p.R > whiteLimit && p.G > whiteLimit && p.B > whiteLimit {
			continue
		}
		root.pixels = append(root.pixels, p)
	}
	if len(root.pixels) == 0 {
		return nil
	}

	boxes := []*box{root}
	for len(boxes) < count {
		best, bestScore := -1, 0
		for i, b := range boxes {
			_, spread := b.channelRange()
			if score := spread * len(b.pixels); spread > 0 && score > bestScore {
				best, bestScore = i, score
			}
		}
		if best < 0 {
			break
		}
		left, right := boxes[best].split()
		boxes[best] = left
		boxes = append(boxes, right)
	}

	sort.SliceStable(boxes, func(i, j int) bool {
		return len(boxes[i].pixels) > len(boxes[j].pixels)
	})

	seen := make(map[string]bool, len(boxes))
	out := make([]string, 0, len(boxes))
	for _, b := range boxes {
		hex := b.average().Hex()
		if seen[hex] {
			continue
		}
		seen[hex] = true
		out = append(out, hex)
	}
	return out
}

// MostCommon merges several palettes by frequency, keeping first-seen order
// among ties, and returns at most limit colors.
func MostCommon(palettes [][]string, limit int) []string {
	counts := map[string]int{}
	var order []string
	for _, p := range palettes {
		for _, c := range p {
			if counts[c] == 0 {
				order = append(order, c)
			}
			counts[c]++
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > limit {
		order = order[:limit]
	}
	return order
}
