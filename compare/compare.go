// Package compare implements the comparison pipeline core: the alignment
// check, the four scoring algorithms, the anti-aliasing filter and the
// threshold verdict. All algorithms are deterministic: identical inputs
// always yield bit-identical scores.
package compare

import (
	"fmt"

	"imagediff/pixel"
	"imagediff/types"
)

// Outcome bundles the comparison result with the post-filter pixel mask.
// Mask is indexed y*width+x and is true exactly for the pixels counted
// in DifferingPixels, which the diff renderer highlights.
type Outcome struct {
	Result types.Result
	Mask   []bool
}

// CheckAlignment verifies that two buffers are comparable. Dimension
// mismatches fail with both dimension pairs attached; the pipeline never
// silently resizes or crops, since that would invalidate pixel-indexed
// comparisons and diff-image alignment. Channel layouts are expected to
// have been normalized by the codec boundary already.
func CheckAlignment(a, b *pixel.Buffer) error {
	if a.Width() != b.Width() || a.Height() != b.Height() {
		return fmt.Errorf("%w: %dx%d vs %dx%d",
			types.ErrDimensionMismatch, a.Width(), a.Height(), b.Width(), b.Height())
	}
	if a.Channels() != b.Channels() {
		return fmt.Errorf("%w: channel layouts %s vs %s were not normalized",
			types.ErrUnsupportedFormat, a.Channels(), b.Channels())
	}
	return nil
}

// Compare runs the full pipeline on two aligned buffers and returns the
// scored outcome. The inputs are never mutated.
func Compare(a, b *pixel.Buffer, opts Options) (*Outcome, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := CheckAlignment(a, b); err != nil {
		return nil, err
	}

	mask, differing := classify(a, b, opts)
	total := uint64(a.Pixels())

	var score float64
	switch opts.Algorithm {
	case types.PixelDiff:
		score = float64(differing) / float64(total)
	case types.MSE:
		score = normalizedMSE(a, b)
	case types.PSNR:
		score = psnr(a, b)
	case types.SSIM:
		score = ssim(a, b, opts.SSIMWindow, opts.SSIMStride)
	default:
		return nil, fmt.Errorf("unknown algorithm %v", opts.Algorithm)
	}

	return &Outcome{
		Result: types.Result{
			Algorithm:       opts.Algorithm,
			Score:           score,
			Passed:          Evaluate(opts.Algorithm, score, opts.Threshold),
			DifferingPixels: differing,
			TotalPixels:     total,
		},
		Mask: mask,
	}, nil
}

// classify walks every pixel once and builds the differing-pixel mask.
// A pixel differs when its maximum per-channel difference exceeds the
// noise floor; with the anti-aliasing filter active, pixels classified
// as edge-smoothing noise are excluded from the mask and the count but
// still contribute to the total. The filter only applies to pixel-diff
// and SSIM runs; MSE and PSNR stay pure numeric.
func classify(a, b *pixel.Buffer, opts Options) ([]bool, uint64) {
	w, h := a.Width(), a.Height()
	mask := make([]bool, w*h)

	filterAA := opts.IgnoreAntialiasing &&
		(opts.Algorithm == types.PixelDiff || opts.Algorithm == types.SSIM)

	var differing uint64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d := maxChannelDiff(a, b, x, y)
			if d <= opts.NoiseFloor {
				continue
			}
			if filterAA && isAntialiased(a, b, x, y, d, opts) {
				continue
			}
			mask[y*w+x] = true
			differing++
		}
	}

	return mask, differing
}

// maxChannelDiff returns the largest absolute per-channel difference
// between pixel (x,y) of the two buffers
func maxChannelDiff(a, b *pixel.Buffer, x, y int) uint8 {
	cc := int(a.Channels())
	base := (y*a.Width() + x) * cc
	sa, sb := a.Samples(), b.Samples()

	var max uint8
	for c := 0; c < cc; c++ {
		va, vb := sa[base+c], sb[base+c]
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
