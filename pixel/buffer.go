package pixel

import "fmt"

// Channels describes the channel layout of a buffer.
type Channels int

const (
	// Grayscale is a single luminance channel per pixel
	Grayscale Channels = 1
	// RGB is three color channels per pixel
	RGB Channels = 3
	// RGBA is three color channels plus alpha per pixel
	RGBA Channels = 4
)

// String returns the human-readable name of the channel layout
func (c Channels) String() string {
	switch c {
	case Grayscale:
		return "grayscale"
	case RGB:
		return "rgb"
	case RGBA:
		return "rgba"
	default:
		return fmt.Sprintf("channels(%d)", int(c))
	}
}

// Buffer is an immutable decoded image: dimensions, channel layout and a
// flat sample slice of length width*height*channels. Sample (x,y,c) lives
// at index (y*width+x)*channels + c. Buffers are never mutated after
// construction and may be read concurrently.
type Buffer struct {
	width    int
	height   int
	channels Channels
	samples  []uint8
}

// New constructs a Buffer and validates that the sample slice is exactly
// consistent with the declared dimensions. A buffer that violates the
// invariant is rejected here, before it can enter any pipeline.
func New(width, height int, channels Channels, samples []uint8) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid buffer dimensions %dx%d", width, height)
	}

	switch channels {
	case Grayscale, RGB, RGBA:
	default:
		return nil, fmt.Errorf("invalid channel layout: %d channels", int(channels))
	}

	want := width * height * int(channels)
	if len(samples) != want {
		return nil, fmt.Errorf("sample length %d does not match %dx%d %s buffer (want %d)",
			len(samples), width, height, channels, want)
	}

	return &Buffer{
		width:    width,
		height:   height,
		channels: channels,
		samples:  samples,
	}, nil
}

// Width returns the buffer width in pixels
func (b *Buffer) Width() int { return b.width }

// Height returns the buffer height in pixels
func (b *Buffer) Height() int { return b.height }

// Channels returns the channel layout
func (b *Buffer) Channels() Channels { return b.channels }

// Pixels returns the total pixel count (width*height)
func (b *Buffer) Pixels() int { return b.width * b.height }

// Samples exposes the flat sample slice for direct index arithmetic.
// Callers must treat it as read-only.
func (b *Buffer) Samples() []uint8 { return b.samples }

// Index returns the flat sample index of channel c of pixel (x,y)
func (b *Buffer) Index(x, y, c int) int {
	return (y*b.width+x)*int(b.channels) + c
}

// At returns channel c of pixel (x,y)
func (b *Buffer) At(x, y, c int) uint8 {
	return b.samples[(y*b.width+x)*int(b.channels)+c]
}

// ToRGBA returns an RGBA copy of the buffer. Grayscale samples are
// replicated across R, G and B; RGB gains an opaque alpha channel.
// An RGBA buffer is returned unchanged.
func (b *Buffer) ToRGBA() *Buffer {
	if b.channels == RGBA {
		return b
	}

	out := make([]uint8, b.width*b.height*4)
	for i := 0; i < b.width*b.height; i++ {
		switch b.channels {
		case Grayscale:
			v := b.samples[i]
			out[i*4+0] = v
			out[i*4+1] = v
			out[i*4+2] = v
		case RGB:
			out[i*4+0] = b.samples[i*3+0]
			out[i*4+1] = b.samples[i*3+1]
			out[i*4+2] = b.samples[i*3+2]
		}
		out[i*4+3] = 255
	}

	return &Buffer{width: b.width, height: b.height, channels: RGBA, samples: out}
}

// Luma converts the buffer to a per-pixel luminance slice using the
// ITU-R BT.601 weights (0.299, 0.587, 0.114). Grayscale buffers are
// returned as their samples widened to float64.
func (b *Buffer) Luma() []float64 {
	out := make([]float64, b.width*b.height)

	if b.channels == Grayscale {
		for i, v := range b.samples {
			out[i] = float64(v)
		}
		return out
	}

	cc := int(b.channels)
	for i := 0; i < b.width*b.height; i++ {
		r := float64(b.samples[i*cc+0])
		g := float64(b.samples[i*cc+1])
		bl := float64(b.samples[i*cc+2])
		out[i] = 0.299*r + 0.587*g + 0.114*bl
	}

	return out
}
