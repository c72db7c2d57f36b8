package svg

import "fmt"

type rgb struct {
	r, g, b float64
}

func (c rgb) String() string {
	return fmt.Sprintf("rgb(%d,%d,%d)", int(c.r), int(c.g), int(c.b))
}

func (c rgb) lerp(to rgb, f float64) rgb {
	return rgb{
		r: c.r + f*(to.r-c.r),
		g: c.g + f*(to.g-c.g),
		b: c.b + f*(to.b-c.b),
	}
}

// luminance uses the ITU-R BT.601 weights.
func (c rgb) luminance() float64 {
	return 0.299*c.r + 0.587*c.g + 0.114*c.b
}

// palette approximates matplotlib's RdYlBu_r: fast cells blue, slow cells red.
var palette = []rgb{
	{49, 54, 149},
	{116, 173, 209},
	{255, 255, 191},
	{253, 174, 97},
	{215, 48, 39},
}

const (
	unpinnedFill = "#dddddd"
	unpinnedText = "#777777"
)

// cellColor returns the fill for t in [0, 1] and a readable text color on top of it.
func cellColor(t float64) (rgb, string) {
	switch {
	case t <= 0:
		t = 0
	case t >= 1:
		t = 1
	}

	segments := float64(len(palette) - 1)
	i := int(t * segments)
	if i >= len(palette)-1 {
		i = len(palette) - 2
	}
	c := palette[i].lerp(palette[i+1], t*segments-float64(i))

	if c.luminance() < 128 {
		return c, "white"
	}
	return c, "black"
}
