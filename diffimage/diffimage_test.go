package diffimage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imagediff/pixel"
)

func TestRenderHighlightsMaskedPixels(t *testing.T) {
	src, err := pixel.New(2, 2, pixel.RGB, []uint8{
		10, 20, 30 /**/, 40, 50, 60,
		70, 80, 90 /**/, 100, 110, 120,
	})
	require.NoError(t, err)

	mask := []bool{true, false, false, true}
	diff := Render(src, mask, DefaultHighlight)

	assert.Equal(t, src.Width(), diff.Width())
	assert.Equal(t, src.Height(), diff.Height())
	assert.Equal(t, pixel.RGBA, diff.Channels())

	for i, flagged := range mask {
		x, y := i%2, i/2
		r := diff.At(x, y, 0)
		g := diff.At(x, y, 1)
		b := diff.At(x, y, 2)
		if flagged {
			assert.Equal(t, DefaultHighlight[0], r, "pixel %d", i)
			assert.Equal(t, DefaultHighlight[1], g, "pixel %d", i)
			assert.Equal(t, DefaultHighlight[2], b, "pixel %d", i)
		} else {
			// unchanged pixels become dimmed grayscale
			assert.Equal(t, r, g, "pixel %d", i)
			assert.Equal(t, g, b, "pixel %d", i)
		}
		assert.Equal(t, uint8(255), diff.At(x, y, 3), "pixel %d alpha", i)
	}
}

func TestRenderCustomHighlightColor(t *testing.T) {
	src, err := pixel.New(1, 1, pixel.Grayscale, []uint8{0})
	require.NoError(t, err)

	highlight := [3]uint8{255, 0, 0}
	diff := Render(src, []bool{true}, highlight)

	assert.Equal(t, uint8(255), diff.At(0, 0, 0))
	assert.Equal(t, uint8(0), diff.At(0, 0, 1))
	assert.Equal(t, uint8(0), diff.At(0, 0, 2))
}

func TestRenderDimsUnchangedPixelsTowardWhite(t *testing.T) {
	src, err := pixel.New(1, 1, pixel.Grayscale, []uint8{0})
	require.NoError(t, err)

	diff := Render(src, []bool{false}, DefaultHighlight)

	// black (luma 0) dims to 255 - 0.6*255 = 102
	assert.Equal(t, uint8(102), diff.At(0, 0, 0))

	white, err := pixel.New(1, 1, pixel.Grayscale, []uint8{255})
	require.NoError(t, err)
	diff = Render(white, []bool{false}, DefaultHighlight)
	assert.GreaterOrEqual(t, diff.At(0, 0, 0), uint8(254), "white must stay near white")
}

func TestRenderDoesNotMutateSource(t *testing.T) {
	samples := []uint8{10, 20, 30, 255, 40, 50, 60, 255}
	src, err := pixel.New(2, 1, pixel.RGBA, append([]uint8(nil), samples...))
	require.NoError(t, err)

	Render(src, []bool{true, true}, DefaultHighlight)

	assert.Equal(t, samples, src.Samples())
}
