package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imagediff/types"
)

func TestParseThreshold(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		algorithm types.Algorithm
		want      float64
		wantErr   bool
	}{
		{"pixel-diff in range", "0.5", types.PixelDiff, 0.5, false},
		{"ssim boundary", "1.0", types.SSIM, 1.0, false},
		{"psnr decibels", "30", types.PSNR, 30.0, false},
		{"not a number", "abc", types.PixelDiff, 0, true},
		{"nan string", "NaN", types.PixelDiff, 0, true},
		{"ssim too high", "1.5", types.SSIM, 0, true},
		{"mse negative", "-0.1", types.MSE, 0, true},
		{"psnr negative", "-3", types.PSNR, 0, true},
		{"psnr infinite", "+Inf", types.PSNR, 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseThreshold(tc.input, tc.algorithm)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, types.ErrInvalidThreshold), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseDiffColor(t *testing.T) {
	color, err := ParseDiffColor("255,0,255")
	require.NoError(t, err)
	assert.Equal(t, [3]uint8{255, 0, 255}, color)

	color, err = ParseDiffColor(" 10 , 20 , 30 ")
	require.NoError(t, err)
	assert.Equal(t, [3]uint8{10, 20, 30}, color)

	for _, spec := range []string{"1,2", "1,2,3,4", "256,0,0", "-1,0,0", "red,0,0", ""} {
		_, err := ParseDiffColor(spec)
		assert.Error(t, err, "spec %q", spec)
	}
}

func TestGetDefaultHistoryPath(t *testing.T) {
	path := GetDefaultHistoryPath()
	assert.Contains(t, path, "imagediff-history.db")
}
