// Package codec is the boundary between encoded image files and the
// normalized pixel buffers the comparison pipeline operates on.
package codec

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"imagediff/pixel"
	"imagediff/types"

	_ "image/gif"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// decodableExtensions lists the input formats the registered decoders handle
var decodableExtensions = []string{".png", ".jpg", ".jpeg", ".webp", ".gif", ".bmp", ".tif", ".tiff"}

// CanDecode reports whether the file extension belongs to a supported
// input format
func CanDecode(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range decodableExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Decode reads and decodes an image file into a pixel buffer.
// Unreadable or corrupt bytes are reported as a decode failure.
func Decode(path string) (*pixel.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot open %s: %v", types.ErrDecode, path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot decode %s: %v", types.ErrDecode, path, err)
	}

	buf, err := FromImage(img)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrUnsupportedFormat, path, err)
	}

	return buf, nil
}

// FromImage converts a decoded image.Image into a pixel buffer.
// Grayscale images keep a single channel, NRGBA keeps four, everything
// else is flattened to RGB.
func FromImage(img image.Image) (*pixel.Buffer, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("empty image bounds %v", bounds)
	}

	switch src := img.(type) {
	case *image.Gray:
		samples := make([]uint8, w*h)
		for y := 0; y < h; y++ {
			copy(samples[y*w:(y+1)*w], src.Pix[y*src.Stride:y*src.Stride+w])
		}
		return pixel.New(w, h, pixel.Grayscale, samples)

	case *image.NRGBA:
		samples := make([]uint8, w*h*4)
		for y := 0; y < h; y++ {
			copy(samples[y*w*4:(y+1)*w*4], src.Pix[y*src.Stride:y*src.Stride+w*4])
		}
		return pixel.New(w, h, pixel.RGBA, samples)

	default:
		samples := make([]uint8, 0, w*h*3)
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				r, g, b, _ := img.At(x, y).RGBA()
				samples = append(samples, uint8(r>>8), uint8(g>>8), uint8(b>>8))
			}
		}
		return pixel.New(w, h, pixel.RGB, samples)
	}
}

// NormalizePair reconciles the channel layouts of two buffers before the
// alignment check. Matching layouts pass through untouched; mismatched
// layouts are both widened to RGBA.
func NormalizePair(a, b *pixel.Buffer) (*pixel.Buffer, *pixel.Buffer) {
	if a.Channels() == b.Channels() {
		return a, b
	}
	return a.ToRGBA(), b.ToRGBA()
}

// ValidateOutputPath checks that a diff artifact destination has an
// encodable extension. Called during eager validation so a bad output
// path fails before any comparison runs.
func ValidateOutputPath(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".png", ".jpg", ".jpeg":
		return nil
	case "":
		return fmt.Errorf("%w: diff output %q has no file extension", types.ErrUnsupportedFormat, path)
	default:
		// webp is decode-only: x/image ships no encoder
		return fmt.Errorf("%w: cannot encode diff image as %q", types.ErrUnsupportedFormat, ext)
	}
}

// ToImage converts a pixel buffer back into an image.Image for encoding
func ToImage(buf *pixel.Buffer) image.Image {
	w, h := buf.Width(), buf.Height()

	switch buf.Channels() {
	case pixel.Grayscale:
		img := image.NewGray(image.Rect(0, 0, w, h))
		copy(img.Pix, buf.Samples())
		return img
	case pixel.RGBA:
		img := image.NewNRGBA(image.Rect(0, 0, w, h))
		copy(img.Pix, buf.Samples())
		return img
	default:
		img := image.NewNRGBA(image.Rect(0, 0, w, h))
		samples := buf.Samples()
		for i := 0; i < w*h; i++ {
			img.Pix[i*4+0] = samples[i*3+0]
			img.Pix[i*4+1] = samples[i*3+1]
			img.Pix[i*4+2] = samples[i*3+2]
			img.Pix[i*4+3] = 255
		}
		return img
	}
}

// EncodeToFile encodes a buffer to the format chosen by the destination
// extension. The image is encoded to a temporary file in the destination
// directory and renamed into place, so an interrupted run never leaves a
// partial artifact behind.
func EncodeToFile(buf *pixel.Buffer, path string) error {
	if err := ValidateOutputPath(path); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("%w: cannot create output directory %s: %v", types.ErrIo, dir, err)
		}
	}

	tmp, err := os.CreateTemp(dir, ".imagediff-*"+filepath.Ext(path))
	if err != nil {
		return fmt.Errorf("%w: cannot create temp file in %s: %v", types.ErrIo, dir, err)
	}
	tmpName := tmp.Name()

	img := ToImage(buf)
	var encodeErr error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		encodeErr = png.Encode(tmp, img)
	case ".jpg", ".jpeg":
		encodeErr = jpeg.Encode(tmp, img, &jpeg.Options{Quality: 90})
	}

	closeErr := tmp.Close()
	if encodeErr != nil || closeErr != nil {
		os.Remove(tmpName)
		if encodeErr == nil {
			encodeErr = closeErr
		}
		return fmt.Errorf("%w: cannot encode %s: %v", types.ErrIo, path, encodeErr)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: cannot write %s: %v", types.ErrIo, path, err)
	}

	return nil
}
