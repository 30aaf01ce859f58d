// Package diffimage renders the visual diff artifact: a buffer of the
// same dimensions as the inputs with differing pixels highlighted.
package diffimage

import (
	"imagediff/pixel"
)

// DefaultHighlight is the highlight color for differing pixels (magenta)
var DefaultHighlight = [3]uint8{255, 0, 255}

// dimFactor controls how much unchanged pixels are faded toward white so
// the highlights stand out
const dimFactor = 0.6

// Render produces a new RGBA buffer from the first input. Pixels flagged
// in the mask (indexed y*width+x, as produced by the comparison) are
// painted with the highlight color at full opacity; unchanged pixels keep
// their grayscaled original, dimmed toward white. The positional mapping
// is exact: the pixel highlighted at (x,y) is the pixel that was counted
// at (x,y). The input buffer is never mutated.
func Render(src *pixel.Buffer, mask []bool, highlight [3]uint8) *pixel.Buffer {
	w, h := src.Width(), src.Height()
	rgba := src.ToRGBA()
	samples := rgba.Samples()

	out := make([]uint8, w*h*4)
	for i := 0; i < w*h; i++ {
		if mask[i] {
			out[i*4+0] = highlight[0]
			out[i*4+1] = highlight[1]
			out[i*4+2] = highlight[2]
			out[i*4+3] = 255
			continue
		}

		r := float64(samples[i*4+0])
		g := float64(samples[i*4+1])
		b := float64(samples[i*4+2])
		gray := dim(0.299*r + 0.587*g + 0.114*b)
		out[i*4+0] = gray
		out[i*4+1] = gray
		out[i*4+2] = gray
		out[i*4+3] = 255
	}

	buf, err := pixel.New(w, h, pixel.RGBA, out)
	if err != nil {
		// cannot happen: dimensions and length are constructed consistently
		panic(err)
	}
	return buf
}

// dim blends a luma value toward white
func dim(luma float64) uint8 {
	v := 255 - dimFactor*(255-luma)
	if v > 255 {
		v = 255
	}
	return uint8(v)
}
