package signalhandler

import (
	"os"
	"os/signal"
	"runtime"
	"syscall"
)

// SetupHandler configures signal handling for clean shutdown
func SetupHandler() {
	// Create a channel to receive OS signals
	sigChan := make(chan os.Signal, 1)

	// Register for specific signals
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Handle signals in a separate goroutine
	go func() {
		sig := <-sigChan
		switch sig {
		case syscall.SIGINT, syscall.SIGTERM:
			// Clean shutdown. Diff artifacts are written atomically, so an
			// interrupted run never leaves a partial image behind.
			os.Exit(0)
		}
	}()
}

// GetOptimalProcs returns the default number of parallel comparison
// workers for the system
func GetOptimalProcs() int {
	// Comparison jobs are CPU-bound pixel math; one worker per CPU
	numCPU := runtime.NumCPU()
	if numCPU < 1 {
		return 1
	}
	return numCPU
}
