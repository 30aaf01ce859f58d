package compare

import (
	"fmt"
	"math"

	"imagediff/types"
)

// Default anti-aliasing tuning constants. These materially change which
// pixels are excluded from the diff, so they are exposed on Options
// rather than hard-coded.
const (
	// DefaultAAColorDelta is the per-channel ceiling a pixel's own
	// difference may reach and still be considered anti-aliasing noise
	DefaultAAColorDelta = 3
	// DefaultAABlendDelta is the cross-image tolerance within which a
	// neighboring pixel counts as agreeing between the two images
	DefaultAABlendDelta = 10
	// DefaultAAGradientDelta is the minimum contrast between a pixel and
	// a neighbor that proves the pixel sits on a local gradient
	DefaultAAGradientDelta = 10
)

// Default SSIM window geometry: 8x8 windows advanced by 4 pixels, so
// windows overlap and the aggregate score is smoother.
const (
	DefaultSSIMWindow = 8
	DefaultSSIMStride = 4
)

// Options configures a single comparison. All settings are passed
// explicitly per job; nothing here is global state.
type Options struct {
	Algorithm types.Algorithm

	// Threshold in the algorithm's own scale: [0,1] for pixel-diff, MSE
	// and SSIM, decibels for PSNR
	Threshold float64

	// IgnoreAntialiasing enables the 3x3 neighborhood filter for
	// pixel-diff and SSIM runs
	IgnoreAntialiasing bool

	// NoiseFloor is the maximum per-channel difference still treated as
	// identical by the pixel classifier (default 0: any difference counts)
	NoiseFloor uint8

	AAColorDelta    uint8
	AABlendDelta    uint8
	AAGradientDelta uint8

	SSIMWindow int
	SSIMStride int
}

// DefaultThreshold returns the conventional threshold for an algorithm:
// pixel-diff and MSE tolerate up to 10% and 1% respectively, PSNR wants
// at least 30 dB, SSIM at least 0.95.
func DefaultThreshold(algorithm types.Algorithm) float64 {
	switch algorithm {
	case types.PSNR:
		return 30.0
	case types.SSIM:
		return 0.95
	case types.MSE:
		return 0.01
	default:
		return 0.1
	}
}

// DefaultOptions returns ready-to-use options for the given algorithm
func DefaultOptions(algorithm types.Algorithm) Options {
	return Options{
		Algorithm:       algorithm,
		Threshold:       DefaultThreshold(algorithm),
		NoiseFloor:      0,
		AAColorDelta:    DefaultAAColorDelta,
		AABlendDelta:    DefaultAABlendDelta,
		AAGradientDelta: DefaultAAGradientDelta,
		SSIMWindow:      DefaultSSIMWindow,
		SSIMStride:      DefaultSSIMStride,
	}
}

// Validate checks the options for configuration mistakes. Called eagerly
// before any job runs, since a bad threshold means the whole batch is
// misconfigured.
func (o Options) Validate() error {
	if err := ValidateThreshold(o.Algorithm, o.Threshold); err != nil {
		return err
	}
	if o.SSIMWindow < 1 {
		return fmt.Errorf("ssim window must be at least 1, got %d", o.SSIMWindow)
	}
	if o.SSIMStride < 1 {
		return fmt.Errorf("ssim stride must be at least 1, got %d", o.SSIMStride)
	}
	return nil
}

// ValidateThreshold rejects NaN and out-of-range thresholds. PSNR
// thresholds are decibels and only need to be non-negative; every other
// algorithm expects [0,1].
func ValidateThreshold(algorithm types.Algorithm, threshold float64) error {
	if math.IsNaN(threshold) {
		return fmt.Errorf("%w: threshold is NaN", types.ErrInvalidThreshold)
	}

	if algorithm == types.PSNR {
		if threshold < 0 || math.IsInf(threshold, 0) {
			return fmt.Errorf("%w: PSNR threshold must be a finite value >= 0 dB, got %v",
				types.ErrInvalidThreshold, threshold)
		}
		return nil
	}

	if threshold < 0 || threshold > 1 {
		return fmt.Errorf("%w: threshold for %s must be between 0.0 and 1.0, got %v",
			types.ErrInvalidThreshold, algorithm, threshold)
	}
	return nil
}
