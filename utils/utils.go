package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"imagediff/compare"
	"imagediff/types"
)

// commands recognized on the command line
var commands = []string{"compare", "batch", "history"}

// ParseArguments converts command-line arguments into a map of flags and values
func ParseArguments() map[string]string {
	args := make(map[string]string)

	// First, identify the command (compare/batch/history)
	command := ""
	commandIndex := -1
	for i := 1; i < len(os.Args); i++ {
		for _, c := range commands {
			if os.Args[i] == c {
				command = c
				commandIndex = i
				break
			}
		}
		if command != "" {
			break
		}
	}

	if command != "" {
		args["command"] = command
	}

	// Process all arguments, skipping the command
	for i := 1; i < len(os.Args); i++ {
		if i == commandIndex {
			continue
		}

		arg := os.Args[i]

		// Handle flags with equals sign (--key=value)
		if strings.HasPrefix(arg, "--") && strings.Contains(arg, "=") {
			parts := strings.SplitN(arg, "=", 2)
			flagName := strings.TrimPrefix(parts[0], "--")
			args[flagName] = parts[1]
			continue
		}

		// Handle flags without equals sign (--key value)
		if strings.HasPrefix(arg, "--") {
			flagName := strings.TrimPrefix(arg, "--")

			// Check if this is a boolean flag (no value)
			if i+1 >= len(os.Args) || strings.HasPrefix(os.Args[i+1], "--") {
				args[flagName] = "true"
			} else {
				// The next argument is the value
				args[flagName] = os.Args[i+1]
				i++ // Skip the value in the next iteration
			}
		}
	}

	return args
}

// GetDefaultHistoryPath returns the default path for the history database
func GetDefaultHistoryPath() string {
	exePath, err := os.Executable()
	if err != nil {
		// Fallback to current directory if executable path can't be determined
		return "imagediff-history.db"
	}
	return filepath.Join(filepath.Dir(exePath), "imagediff-history.db")
}

// PrintUsage outputs the command-line usage instructions
func PrintUsage() {
	fmt.Printf("Usage:\n")
	fmt.Printf("  %s compare --image-a=PATH --image-b=PATH [--algorithm=NAME] [--threshold=VALUE] [--ignore-antialiasing] [--diff-output=PATH] [--diff-color=R,G,B] [--format=text|json] [--history-db=PATH] [--debug] [--logfile=PATH]\n", os.Args[0])
	fmt.Printf("  %s batch --config=FILE [--concurrency=N] [--format=text|json] [--history-db=PATH] [--debug] [--logfile=PATH]\n", os.Args[0])
	fmt.Printf("  %s history --database=PATH [--limit=N]\n", os.Args[0])
	fmt.Printf("\nParameters:\n")
	fmt.Printf("  --image-a, --image-b   : Paths of the two images to compare (png, jpeg, webp, gif, bmp, tiff)\n")
	fmt.Printf("  --algorithm            : pixel-diff, mse, psnr or ssim (default: pixel-diff)\n")
	fmt.Printf("  --threshold            : Pass threshold; 0.0-1.0 for pixel-diff/mse/ssim, decibels for psnr\n")
	fmt.Printf("                           (defaults: pixel-diff 0.1, mse 0.01, psnr 30, ssim 0.95)\n")
	fmt.Printf("  --ignore-antialiasing  : Exclude anti-aliasing noise from pixel-diff/ssim classification\n")
	fmt.Printf("                           (tolerances: color delta %d, blend delta %d, gradient delta %d)\n",
		compare.DefaultAAColorDelta, compare.DefaultAABlendDelta, compare.DefaultAAGradientDelta)
	fmt.Printf("  --diff-output          : Write a diff image highlighting differing pixels (.png or .jpg)\n")
	fmt.Printf("  --diff-color           : Highlight color as R,G,B (default: 255,0,255)\n")
	fmt.Printf("  --format               : Report format, text or json (default: text)\n")
	fmt.Printf("  --config               : YAML file describing a batch of comparisons\n")
	fmt.Printf("  --concurrency          : Number of parallel comparison workers (default: number of CPUs)\n")
	fmt.Printf("  --history-db           : Record results in a sqlite history database\n")
	fmt.Printf("  --database             : History database to read (default: %s)\n", GetDefaultHistoryPath())
	fmt.Printf("  --limit                : Number of history entries to show (default: 20)\n")
	fmt.Printf("  --debug                : Enable debug logging\n")
	fmt.Printf("  --logfile              : Custom log file path (default: imagediff.log)\n")
	fmt.Printf("\nExit codes:\n")
	fmt.Printf("  0 = all comparisons passed, 1 = at least one failed its threshold,\n")
	fmt.Printf("  2 = at least one comparison could not be evaluated or the run was misconfigured\n")
	fmt.Printf("\nExamples:\n")
	fmt.Printf("  %s compare --image-a=baseline.png --image-b=current.png --algorithm=ssim --threshold=0.95\n", os.Args[0])
	fmt.Printf("  %s batch --config=comparisons.yaml --concurrency=4 --format=json\n", os.Args[0])
}

// ParseThreshold parses and validates a threshold value for the given algorithm
func ParseThreshold(thresholdStr string, algorithm types.Algorithm) (float64, error) {
	parsed, err := strconv.ParseFloat(thresholdStr, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: cannot parse threshold %q", types.ErrInvalidThreshold, thresholdStr)
	}
	if err := compare.ValidateThreshold(algorithm, parsed); err != nil {
		return 0, err
	}
	return parsed, nil
}

// ParseDiffColor parses an "R,G,B" highlight color specification
func ParseDiffColor(spec string) ([3]uint8, error) {
	var color [3]uint8

	parts := strings.Split(spec, ",")
	if len(parts) != 3 {
		return color, fmt.Errorf("invalid diff color %q (expected R,G,B)", spec)
	}

	for i, part := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(part), 10, 8)
		if err != nil {
			return color, fmt.Errorf("invalid diff color component %q in %q", part, spec)
		}
		color[i] = uint8(v)
	}

	return color, nil
}
