// Package report serializes comparison outcomes to text or JSON. Every
// job gets either a metric set or a structured error description; the
// reporter never drops an entry.
package report

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"imagediff/types"
)

// Entry is one reportable job outcome: either a Result or an Err
type Entry struct {
	Name   string
	ImageA string
	ImageB string
	Result *types.Result
	Err    error
}

// jsonEntry is the stable machine-readable shape. Field names are part
// of the CI contract and must not change.
type jsonEntry struct {
	Name            string     `json:"name,omitempty"`
	ImageA          string     `json:"image_a"`
	ImageB          string     `json:"image_b"`
	Algorithm       string     `json:"algorithm,omitempty"`
	Score           *float64   `json:"score,omitempty"`
	Passed          *bool      `json:"passed,omitempty"`
	DifferingPixels *uint64    `json:"differing_pixels,omitempty"`
	TotalPixels     *uint64    `json:"total_pixels,omitempty"`
	DiffImagePath   *string    `json:"diff_image_path"`
	Error           *jsonError `json:"error,omitempty"`
}

type jsonError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func toJSONEntry(e Entry) jsonEntry {
	out := jsonEntry{
		Name:   e.Name,
		ImageA: e.ImageA,
		ImageB: e.ImageB,
	}

	if e.Err != nil {
		out.Error = &jsonError{
			Kind:    types.ErrorKind(e.Err),
			Message: e.Err.Error(),
		}
		return out
	}

	r := e.Result
	score := jsonScore(r.Score)
	out.Algorithm = r.Algorithm.String()
	out.Score = &score
	out.Passed = &r.Passed
	out.DifferingPixels = &r.DifferingPixels
	out.TotalPixels = &r.TotalPixels
	if r.DiffImagePath != "" {
		p := r.DiffImagePath
		out.DiffImagePath = &p
	}
	return out
}

// jsonScore clamps non-finite scores to the largest finite float64,
// since JSON has no representation for IEEE infinities. A PSNR of +Inf
// (identical images) therefore serializes as math.MaxFloat64; in-memory
// results and threshold evaluation keep the true value.
func jsonScore(score float64) float64 {
	if math.IsInf(score, 1) {
		return math.MaxFloat64
	}
	if math.IsInf(score, -1) {
		return -math.MaxFloat64
	}
	return score
}

// MarshalEntry serializes a single comparison outcome as a JSON object
func MarshalEntry(e Entry) ([]byte, error) {
	return json.MarshalIndent(toJSONEntry(e), "", "  ")
}

// MarshalEntries serializes a batch as a JSON array in submission order
func MarshalEntries(entries []Entry) ([]byte, error) {
	out := make([]jsonEntry, len(entries))
	for i, e := range entries {
		out[i] = toJSONEntry(e)
	}
	return json.MarshalIndent(out, "", "  ")
}

// RenderText formats entries as a human-readable report in submission order
func RenderText(entries []Entry) string {
	var sb strings.Builder
	for i, e := range entries {
		if i > 0 {
			sb.WriteString("\n")
		}
		renderTextEntry(&sb, e)
	}
	return sb.String()
}

func renderTextEntry(sb *strings.Builder, e Entry) {
	if e.Name != "" {
		fmt.Fprintf(sb, "Comparison %q: %s vs %s\n", e.Name, e.ImageA, e.ImageB)
	} else {
		fmt.Fprintf(sb, "Comparison: %s vs %s\n", e.ImageA, e.ImageB)
	}

	if e.Err != nil {
		fmt.Fprintf(sb, "  Error (%s): %v\n", types.ErrorKind(e.Err), e.Err)
		return
	}

	r := e.Result
	fmt.Fprintf(sb, "  Algorithm:        %s\n", r.Algorithm)
	fmt.Fprintf(sb, "  Score:            %s\n", formatScore(r))
	fmt.Fprintf(sb, "  Passed:           %v\n", r.Passed)

	ratio := 0.0
	if r.TotalPixels > 0 {
		ratio = float64(r.DifferingPixels) / float64(r.TotalPixels)
	}
	fmt.Fprintf(sb, "  Differing pixels: %d/%d (%.2f%%)\n",
		r.DifferingPixels, r.TotalPixels, ratio*100)

	if r.DiffImagePath != "" {
		fmt.Fprintf(sb, "  Diff image:       %s\n", r.DiffImagePath)
	}
}

// formatScore renders the score in the algorithm's own scale. PSNR is
// in decibels and may legitimately be +Inf for identical images.
func formatScore(r *types.Result) string {
	if r.Algorithm == types.PSNR {
		if math.IsInf(r.Score, 1) {
			return "+Inf dB"
		}
		return fmt.Sprintf("%.4f dB", r.Score)
	}
	return fmt.Sprintf("%.6f", r.Score)
}
