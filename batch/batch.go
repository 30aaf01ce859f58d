// Package batch fans comparison jobs out over a bounded worker pool and
// collects their outcomes in submission order.
package batch

import (
	"fmt"
	"os"
	"sync"
	"time"

	"imagediff/codec"
	"imagediff/compare"
	"imagediff/diffimage"
	"imagediff/logging"
	"imagediff/report"
	"imagediff/types"

	"golang.org/x/sync/errgroup"
)

// Job is one fully-resolved comparison: sources, options and diff
// artifact settings. A job is owned by the orchestrator for its lifetime
// and never shared or mutated concurrently.
type Job struct {
	Name       string
	ImageA     string
	ImageB     string
	Options    compare.Options
	DiffOutput string
	DiffColor  [3]uint8
}

// RunJob executes the full pipeline for one job: decode, normalize,
// align, score, and optionally render and write the diff artifact.
// Errors are recorded in the returned entry, never propagated, so a
// failing job cannot abort its siblings.
func RunJob(job Job) report.Entry {
	entry := report.Entry{
		Name:   job.Name,
		ImageA: job.ImageA,
		ImageB: job.ImageB,
	}

	bufA, err := codec.Decode(job.ImageA)
	if err != nil {
		entry.Err = err
		logging.LogComparison(job.ImageA, job.ImageB, false, err.Error())
		return entry
	}

	bufB, err := codec.Decode(job.ImageB)
	if err != nil {
		entry.Err = err
		logging.LogComparison(job.ImageA, job.ImageB, false, err.Error())
		return entry
	}

	bufA, bufB = codec.NormalizePair(bufA, bufB)

	outcome, err := compare.Compare(bufA, bufB, job.Options)
	if err != nil {
		entry.Err = err
		logging.LogComparison(job.ImageA, job.ImageB, false, err.Error())
		return entry
	}

	result := outcome.Result

	if job.DiffOutput != "" {
		diff := diffimage.Render(bufA, outcome.Mask, job.DiffColor)
		if err := codec.EncodeToFile(diff, job.DiffOutput); err != nil {
			entry.Err = err
			logging.LogComparison(job.ImageA, job.ImageB, false, err.Error())
			return entry
		}
		result.DiffImage = diff
		result.DiffImagePath = job.DiffOutput
	}

	entry.Result = &result
	logging.LogComparison(job.ImageA, job.ImageB, true,
		fmt.Sprintf("%s score=%v passed=%v", result.Algorithm, result.Score, result.Passed))
	return entry
}

// Run executes jobs on up to concurrency parallel workers and returns
// their entries in submission order regardless of completion order.
// Every job runs entirely within one worker; jobs share no mutable
// state, so source buffers are only ever read.
func Run(jobs []Job, concurrency int, showProgress bool) []report.Entry {
	if concurrency < 1 {
		concurrency = 1
	}

	entries := make([]report.Entry, len(jobs))

	var tracker *progressTracker
	if showProgress {
		tracker = startProgressTracker(len(jobs))
		defer tracker.stop()
	}

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i := range jobs {
		i := i
		g.Go(func() error {
			entries[i] = RunJob(jobs[i])
			if tracker != nil {
				tracker.record(entries[i])
			}
			return nil
		})
	}
	g.Wait()

	return entries
}

// progressTracker periodically displays batch progress, adapted from the
// scan progress display. Output goes to stderr so it never corrupts a
// report written to stdout.
type progressTracker struct {
	processed int
	failed    int
	errors    int
	total     int
	ticker    *time.Ticker
	done      chan bool
	mu        sync.Mutex
}

func startProgressTracker(total int) *progressTracker {
	tracker := &progressTracker{
		ticker: time.NewTicker(500 * time.Millisecond),
		done:   make(chan bool),
		total:  total,
	}

	go tracker.displayProgress()

	return tracker
}

func (p *progressTracker) displayProgress() {
	for {
		select {
		case <-p.done:
			return
		case <-p.ticker.C:
			p.mu.Lock()
			if p.errors > 0 {
				fmt.Fprintf(os.Stderr, "\rProgress: %d/%d (Failed: %d, Errors: %d)",
					p.processed, p.total, p.failed, p.errors)
			} else {
				fmt.Fprintf(os.Stderr, "\rProgress: %d/%d (Failed: %d)",
					p.processed, p.total, p.failed)
			}
			p.mu.Unlock()
		}
	}
}

func (p *progressTracker) record(e report.Entry) {
	p.mu.Lock()
	p.processed++
	if e.Err != nil {
		p.errors++
	} else if !e.Result.Passed {
		p.failed++
	}
	p.mu.Unlock()
}

func (p *progressTracker) stop() {
	p.ticker.Stop()
	p.done <- true
	fmt.Fprintln(os.Stderr)
}

// Summary aggregates a finished batch
type Summary struct {
	Passed   int
	Failed   int
	Errored  int
	Duration time.Duration
}

// Summarize tallies entries into a batch summary
func Summarize(entries []report.Entry, duration time.Duration) Summary {
	s := Summary{Duration: duration}
	for _, e := range entries {
		switch {
		case e.Err != nil:
			s.Errored++
		case e.Result.Passed:
			s.Passed++
		default:
			s.Failed++
		}
	}
	return s
}

// ExitCode derives the worst-case process exit status across the batch:
// any unevaluable job outranks a threshold failure, which outranks a pass
func (s Summary) ExitCode() int {
	switch {
	case s.Errored > 0:
		return types.ExitError
	case s.Failed > 0:
		return types.ExitFailed
	default:
		return types.ExitPassed
	}
}
