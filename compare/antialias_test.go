package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imagediff/types"
)

// edgeSamples builds a 5x5 render of a hard vertical edge: columns 0-1
// black, column 2 the anti-aliased blend, columns 3-4 white. Two renders
// of the same content differ only in how the blend column came out.
func edgeSamples(blend uint8) []uint8 {
	samples := make([]uint8, 5*5)
	for y := 0; y < 5; y++ {
		samples[y*5+2] = blend
		samples[y*5+3] = 255
		samples[y*5+4] = 255
	}
	return samples
}

func TestAntialiasedEdgeExcluded(t *testing.T) {
	a := grayBuf(t, 5, 5, edgeSamples(128))
	b := grayBuf(t, 5, 5, edgeSamples(130))

	opts := DefaultOptions(types.PixelDiff)
	outcome, err := Compare(a, b, opts)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), outcome.Result.DifferingPixels,
		"without the filter every edge pixel counts")

	opts.IgnoreAntialiasing = true
	outcome, err = Compare(a, b, opts)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), outcome.Result.DifferingPixels,
		"edge-smoothing noise must be excluded")
	assert.Equal(t, 0.0, outcome.Result.Score)
	assert.Equal(t, uint64(25), outcome.Result.TotalPixels,
		"excluded pixels still contribute to the total")
}

func TestUniformRegionOutlierStillCounts(t *testing.T) {
	// A lone slightly-off pixel in a flat region sits on no gradient,
	// so the filter must not excuse it
	samplesA := make([]uint8, 5*5)
	samplesB := make([]uint8, 5*5)
	for i := range samplesA {
		samplesA[i] = 100
		samplesB[i] = 100
	}
	samplesB[2*5+2] = 102

	a := grayBuf(t, 5, 5, samplesA)
	b := grayBuf(t, 5, 5, samplesB)

	opts := DefaultOptions(types.PixelDiff)
	opts.IgnoreAntialiasing = true
	outcome, err := Compare(a, b, opts)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), outcome.Result.DifferingPixels)
}

func TestLargeDifferenceNeverFiltered(t *testing.T) {
	// Same edge geometry, but the blend column differs by far more than
	// the color delta tolerance: a real change, not smoothing noise
	a := grayBuf(t, 5, 5, edgeSamples(128))
	b := grayBuf(t, 5, 5, edgeSamples(200))

	opts := DefaultOptions(types.PixelDiff)
	opts.IgnoreAntialiasing = true
	outcome, err := Compare(a, b, opts)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), outcome.Result.DifferingPixels)
}

func TestFilterInactiveForNumericAlgorithms(t *testing.T) {
	a := grayBuf(t, 5, 5, edgeSamples(128))
	b := grayBuf(t, 5, 5, edgeSamples(130))

	// MSE and PSNR stay pure numeric even when the flag is set
	for _, algorithm := range []types.Algorithm{types.MSE, types.PSNR} {
		opts := DefaultOptions(algorithm)
		opts.IgnoreAntialiasing = true
		outcome, err := Compare(a, b, opts)
		require.NoError(t, err)
		assert.Equal(t, uint64(5), outcome.Result.DifferingPixels, "algorithm %s", algorithm)
	}
}

func TestIdenticalImagesUnaffectedByFilter(t *testing.T) {
	buf := patternGray(t, 8, 8, 3)

	for _, ignoreAA := range []bool{false, true} {
		opts := DefaultOptions(types.PixelDiff)
		opts.IgnoreAntialiasing = ignoreAA
		outcome, err := Compare(buf, buf, opts)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), outcome.Result.DifferingPixels)
	}
}
