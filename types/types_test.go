package types

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlgorithmRoundTrip(t *testing.T) {
	for _, a := range []Algorithm{PixelDiff, MSE, PSNR, SSIM} {
		parsed, err := ParseAlgorithm(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, parsed)
	}

	// pixeldiff is accepted as a spelling variant
	parsed, err := ParseAlgorithm("pixeldiff")
	require.NoError(t, err)
	assert.Equal(t, PixelDiff, parsed)

	_, err = ParseAlgorithm("md5")
	assert.Error(t, err)
}

func TestHigherIsBetter(t *testing.T) {
	assert.False(t, PixelDiff.HigherIsBetter())
	assert.False(t, MSE.HigherIsBetter())
	assert.True(t, PSNR.HigherIsBetter())
	assert.True(t, SSIM.HigherIsBetter())
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		kind string
	}{
		{fmt.Errorf("%w: cannot open x.png", ErrDecode), "decode-failure"},
		{fmt.Errorf("%w: 2x2 vs 3x3", ErrDimensionMismatch), "dimension-mismatch"},
		{fmt.Errorf("%w: .webp", ErrUnsupportedFormat), "unsupported-format"},
		{fmt.Errorf("%w: NaN", ErrInvalidThreshold), "invalid-threshold"},
		{fmt.Errorf("%w: disk full", ErrIo), "io-failure"},
		{fmt.Errorf("something else"), "error"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.kind, ErrorKind(tc.err), "error %v", tc.err)
	}
}
