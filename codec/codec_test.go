package codec

import (
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imagediff/pixel"
	"imagediff/types"
)

// writePNG encodes an image to a fresh file under dir and returns its path
func writePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func TestCanDecode(t *testing.T) {
	assert.True(t, CanDecode("shot.png"))
	assert.True(t, CanDecode("SHOT.PNG"))
	assert.True(t, CanDecode("photo.jpeg"))
	assert.True(t, CanDecode("frame.webp"))
	assert.True(t, CanDecode("scan.tiff"))
	assert.False(t, CanDecode("notes.txt"))
	assert.False(t, CanDecode("archive"))
}

func TestDecodePNG(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	copy(img.Pix, []uint8{
		255, 0, 0, 255 /**/, 0, 255, 0, 255,
		0, 0, 255, 255 /**/, 10, 20, 30, 128,
	})
	path := writePNG(t, t.TempDir(), "in.png", img)

	buf, err := Decode(path)
	require.NoError(t, err)
	assert.Equal(t, 2, buf.Width())
	assert.Equal(t, 2, buf.Height())
	assert.Equal(t, pixel.RGBA, buf.Channels())
	assert.Equal(t, img.Pix, buf.Samples())
}

func TestDecodeGrayPNG(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 3, 1))
	copy(img.Pix, []uint8{0, 128, 255})
	path := writePNG(t, t.TempDir(), "gray.png", img)

	buf, err := Decode(path)
	require.NoError(t, err)
	assert.Equal(t, pixel.Grayscale, buf.Channels())
	assert.Equal(t, []uint8{0, 128, 255}, buf.Samples())
}

func TestDecodeMissingFile(t *testing.T) {
	_, err := Decode(filepath.Join(t.TempDir(), "nope.png"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrDecode))
}

func TestDecodeCorruptBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.png")
	require.NoError(t, os.WriteFile(path, []byte("this is not an image"), 0644))

	_, err := Decode(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrDecode))
}

func TestNormalizePair(t *testing.T) {
	gray, err := pixel.New(2, 1, pixel.Grayscale, []uint8{10, 20})
	require.NoError(t, err)
	rgba, err := pixel.New(2, 1, pixel.RGBA, []uint8{1, 2, 3, 255, 4, 5, 6, 255})
	require.NoError(t, err)

	// matching layouts pass through untouched
	a, b := NormalizePair(gray, gray)
	assert.Same(t, gray, a)
	assert.Same(t, gray, b)

	// mismatched layouts are both widened to RGBA
	a, b = NormalizePair(gray, rgba)
	assert.Equal(t, pixel.RGBA, a.Channels())
	assert.Equal(t, pixel.RGBA, b.Channels())
	assert.Equal(t, []uint8{10, 10, 10, 255, 20, 20, 20, 255}, a.Samples())
}

func TestValidateOutputPath(t *testing.T) {
	assert.NoError(t, ValidateOutputPath("diff.png"))
	assert.NoError(t, ValidateOutputPath("out/diff.JPG"))
	assert.NoError(t, ValidateOutputPath("diff.jpeg"))

	for _, path := range []string{"diff.webp", "diff.gif", "diff.bmp", "diff"} {
		err := ValidateOutputPath(path)
		require.Error(t, err, path)
		assert.True(t, errors.Is(err, types.ErrUnsupportedFormat), path)
	}
}

func TestEncodeToFileRoundTrip(t *testing.T) {
	buf, err := pixel.New(2, 1, pixel.RGBA, []uint8{255, 0, 255, 255, 10, 20, 30, 128})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "diff.png")
	require.NoError(t, EncodeToFile(buf, path))

	decoded, err := Decode(path)
	require.NoError(t, err)
	assert.Equal(t, buf.Samples(), decoded.Samples())
}

func TestEncodeToFileCreatesDirectories(t *testing.T) {
	buf, err := pixel.New(1, 1, pixel.RGBA, []uint8{1, 2, 3, 128})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "nested", "deeper", "diff.png")
	require.NoError(t, EncodeToFile(buf, path))

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestEncodeToFileRejectsBadExtension(t *testing.T) {
	buf, err := pixel.New(1, 1, pixel.Grayscale, []uint8{0})
	require.NoError(t, err)

	err = EncodeToFile(buf, filepath.Join(t.TempDir(), "diff.webp"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrUnsupportedFormat))
}

func TestEncodeToFileLeavesNoTempArtifacts(t *testing.T) {
	buf, err := pixel.New(1, 1, pixel.Grayscale, []uint8{42})
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, EncodeToFile(buf, filepath.Join(dir, "diff.png")))

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "diff.png", files[0].Name())
}

func TestFromImageFlattensExoticModels(t *testing.T) {
	// YCbCr has no direct buffer layout and falls to the RGB path
	img := image.NewYCbCr(image.Rect(0, 0, 2, 2), image.YCbCrSubsampleRatio444)
	buf, err := FromImage(img)
	require.NoError(t, err)
	assert.Equal(t, pixel.RGB, buf.Channels())
	assert.Equal(t, 4, buf.Pixels())
}

func TestFromImageRejectsEmptyBounds(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 0, 0))
	_, err := FromImage(img)
	assert.Error(t, err)
}
