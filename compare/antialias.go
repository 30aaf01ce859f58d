package compare

import "imagediff/pixel"

// isAntialiased classifies a candidate differing pixel as anti-aliasing
// noise. Edge pixels smoothed by rendering anti-aliasing differ slightly
// between two renders of identical content and must not count as real
// differences when the caller opts in.
//
// A pixel (x,y) with per-channel difference ownDiff is anti-aliasing when
// both hold:
//
//	(a) ownDiff is within AAColorDelta, and
//	(b) some pixel in its 3x3 neighborhood agrees between the two images
//	    (within AABlendDelta) while contrasting with (x,y) by at least
//	    AAGradientDelta in either image - i.e. the pixel sits on a local
//	    gradient rather than being a uniform-region outlier.
//
// The gradient test accepts contrast in either image so the classifier
// is symmetric: swapping the inputs never changes the pixel-diff score.
func isAntialiased(a, b *pixel.Buffer, x, y int, ownDiff uint8, opts Options) bool {
	if ownDiff > opts.AAColorDelta {
		return false
	}

	w, h := a.Width(), a.Height()
	x0, y0 := x-1, y-1
	x2, y2 := x+1, y+1
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x2 > w-1 {
		x2 = w - 1
	}
	if y2 > h-1 {
		y2 = h - 1
	}

	for ny := y0; ny <= y2; ny++ {
		for nx := x0; nx <= x2; nx++ {
			if nx == x && ny == y {
				continue
			}

			// the neighbor must agree between the two images
			if maxChannelDiff(a, b, nx, ny) > opts.AABlendDelta {
				continue
			}

			// and contrast with the candidate pixel in at least one image
			if neighborContrast(a, x, y, nx, ny) >= opts.AAGradientDelta ||
				neighborContrast(b, x, y, nx, ny) >= opts.AAGradientDelta {
				return true
			}
		}
	}

	return false
}

// neighborContrast returns the largest per-channel difference between
// two pixels of the same buffer
func neighborContrast(buf *pixel.Buffer, x, y, nx, ny int) uint8 {
	cc := int(buf.Channels())
	s := buf.Samples()
	base := (y*buf.Width() + x) * cc
	nbase := (ny*buf.Width() + nx) * cc

	var max uint8
	for c := 0; c < cc; c++ {
		va, vb := s[base+c], s[nbase+c]
		var d uint8
		if va > vb {
			d = va - vb
		} else {
			d = vb - va
		}
		if d > max {
			max = d
		}
	}
	return max
}
