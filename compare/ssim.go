package compare

import "imagediff/pixel"

// SSIM stabilizing constants per the standard formulation:
// C1 = (0.01*255)^2, C2 = (0.03*255)^2.
const (
	ssimC1 = (0.01 * 255) * (0.01 * 255)
	ssimC2 = (0.03 * 255) * (0.03 * 255)
)

// ssim computes the mean structural similarity over sliding local windows
// of the luma-converted images. Windows that run past the right or bottom
// edge are clipped to the in-bounds region, never skipped, so small
// images are fully covered; the policy is applied uniformly to every
// window. The aggregate score lies in [-1,1], 1.0 meaning identical.
func ssim(a, b *pixel.Buffer, window, stride int) float64 {
	w, h := a.Width(), a.Height()
	lumaA := a.Luma()
	lumaB := b.Luma()

	var sum float64
	var windows int

	for y0 := 0; y0 < h; y0 += stride {
		y1 := y0 + window
		if y1 > h {
			y1 = h
		}
		for x0 := 0; x0 < w; x0 += stride {
			x1 := x0 + window
			if x1 > w {
				x1 = w
			}
			sum += windowSSIM(lumaA, lumaB, w, x0, y0, x1, y1)
			windows++
		}
	}

	return sum / float64(windows)
}

// windowSSIM evaluates the SSIM formula over one window: local means
// capture luminance, variances capture contrast and the covariance
// captures structure.
func windowSSIM(lumaA, lumaB []float64, width, x0, y0, x1, y1 int) float64 {
	n := float64((x1 - x0) * (y1 - y0))

	var sumA, sumB float64
	for y := y0; y < y1; y++ {
		row := y * width
		for x := x0; x < x1; x++ {
			sumA += lumaA[row+x]
			sumB += lumaB[row+x]
		}
	}
	meanA := sumA / n
	meanB := sumB / n

	var varA, varB, cov float64
	for y := y0; y < y1; y++ {
		row := y * width
		for x := x0; x < x1; x++ {
			da := lumaA[row+x] - meanA
			db := lumaB[row+x] - meanB
			varA += da * da
			varB += db * db
			cov += da * db
		}
	}
	varA /= n
	varB /= n
	cov /= n

	numerator := (2*meanA*meanB + ssimC1) * (2*cov + ssimC2)
	denominator := (meanA*meanA + meanB*meanB + ssimC1) * (varA + varB + ssimC2)

	return numerator / denominator
}
