package types

import (
	"errors"
	"fmt"

	"imagediff/pixel"
)

// Algorithm identifies one of the supported comparison algorithms
type Algorithm int

const (
	// PixelDiff counts per-pixel differences against a noise floor
	PixelDiff Algorithm = iota
	// MSE is the mean squared error normalized to [0,1]
	MSE
	// PSNR is the peak signal-to-noise ratio in decibels
	PSNR
	// SSIM is the windowed structural similarity index
	SSIM
)

// String returns the CLI/config name of the algorithm
func (a Algorithm) String() string {
	switch a {
	case PixelDiff:
		return "pixel-diff"
	case MSE:
		return "mse"
	case PSNR:
		return "psnr"
	case SSIM:
		return "ssim"
	default:
		return fmt.Sprintf("algorithm(%d)", int(a))
	}
}

// HigherIsBetter reports the threshold direction of the algorithm.
// PSNR and SSIM scores improve upward; pixel-diff and MSE downward.
func (a Algorithm) HigherIsBetter() bool {
	return a == PSNR || a == SSIM
}

// ParseAlgorithm resolves an algorithm name from the CLI or a config file
func ParseAlgorithm(name string) (Algorithm, error) {
	switch name {
	case "pixel-diff", "pixeldiff":
		return PixelDiff, nil
	case "mse":
		return MSE, nil
	case "psnr":
		return PSNR, nil
	case "ssim":
		return SSIM, nil
	default:
		return 0, fmt.Errorf("unknown algorithm %q (expected pixel-diff, mse, psnr or ssim)", name)
	}
}

// Result holds the outcome of a single successful comparison.
// It is immutable once produced.
type Result struct {
	Algorithm       Algorithm
	Score           float64
	Passed          bool
	DifferingPixels uint64
	TotalPixels     uint64
	DiffImage       *pixel.Buffer
	DiffImagePath   string
}

// Process exit codes, part of the CI contract.
const (
	// ExitPassed means every job ran and passed its threshold
	ExitPassed = 0
	// ExitFailed means at least one job ran but failed its threshold
	ExitFailed = 1
	// ExitError means at least one job could not be evaluated at all
	ExitError = 2
)

// Sentinel errors for the failure taxonomy. Wrapped with %w so callers
// can classify with errors.Is.
var (
	// ErrDecode marks unreadable or corrupt image bytes
	ErrDecode = errors.New("decode failure")
	// ErrDimensionMismatch marks incomparable image sizes
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrUnsupportedFormat marks a format or layout the codec cannot handle
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrInvalidThreshold marks an out-of-range or NaN threshold
	ErrInvalidThreshold = errors.New("invalid threshold")
	// ErrIo marks a failure writing a diff image or report
	ErrIo = errors.New("io failure")
)

// ErrorKind returns the stable machine-readable name of an error's
// category, used in JSON reports and the history database.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrDecode):
		return "decode-failure"
	case errors.Is(err, ErrDimensionMismatch):
		return "dimension-mismatch"
	case errors.Is(err, ErrUnsupportedFormat):
		return "unsupported-format"
	case errors.Is(err, ErrInvalidThreshold):
		return "invalid-threshold"
	case errors.Is(err, ErrIo):
		return "io-failure"
	default:
		return "error"
	}
}
