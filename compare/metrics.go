package compare

import (
	"math"

	"imagediff/pixel"
)

// maxSquaredSample is 255^2, the MSE normalization constant for 8-bit samples
const maxSquaredSample = 255.0 * 255.0

// rawMSE computes the mean of squared per-channel differences across all
// pixels and channels, unnormalized. Accumulation order is fixed
// (row-major, channel-minor) so the result is bit-identical run to run.
func rawMSE(a, b *pixel.Buffer) float64 {
	sa, sb := a.Samples(), b.Samples()

	var sum float64
	for i := range sa {
		d := float64(sa[i]) - float64(sb[i])
		sum += d * d
	}

	return sum / float64(len(sa))
}

// normalizedMSE maps the raw MSE into [0,1] by dividing by 255^2
func normalizedMSE(a, b *pixel.Buffer) float64 {
	return rawMSE(a, b) / maxSquaredSample
}

// psnr computes the peak signal-to-noise ratio in decibels from the raw
// MSE. Identical images have MSE 0 and PSNR +Inf by definition.
func psnr(a, b *pixel.Buffer) float64 {
	mse := rawMSE(a, b)
	if mse == 0 {
		return math.Inf(1)
	}
	return 10.0 * math.Log10(maxSquaredSample/mse)
}
