package compare

import "imagediff/types"

// Evaluate maps a score and a configured threshold to a pass/fail
// verdict, applying the per-algorithm direction rule: PSNR and SSIM
// scores improve upward and pass when score >= threshold; pixel-diff
// and MSE improve downward and pass when score <= threshold. Callers
// must not assume a uniform direction across algorithms.
func Evaluate(algorithm types.Algorithm, score, threshold float64) bool {
	if algorithm.HigherIsBetter() {
		return score >= threshold
	}
	return score <= threshold
}

// VerdictExitCode derives the process exit code from a verdict. Pipeline
// errors that prevent scoring map to types.ExitError instead, so CI
// tooling can tell "images differ" apart from "comparison could not run".
func VerdictExitCode(passed bool) int {
	if passed {
		return types.ExitPassed
	}
	return types.ExitFailed
}
