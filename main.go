package main

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"time"

	"imagediff/batch"
	"imagediff/compare"
	"imagediff/database"
	"imagediff/diffimage"
	"imagediff/logging"
	"imagediff/report"
	"imagediff/signalhandler"
	"imagediff/types"
	"imagediff/utils"
)

func main() {
	// Set up proper signal handling
	signalhandler.SetupHandler()

	// Parse command line arguments into a map
	args := utils.ParseArguments()

	command, hasCommand := args["command"]

	// Setup debug logging if enabled
	if _, ok := args["debug"]; ok {
		logPath := "imagediff.log"
		if customLogPath, ok := args["logfile"]; ok && customLogPath != "" {
			logPath = customLogPath
		}
		if err := logging.SetupLogger(logPath); err != nil {
			fmt.Printf("Warning: Failed to setup logging: %v\n", err)
		} else {
			fmt.Printf("Debug mode enabled. Logging to: %s\n", logPath)
		}
		defer logging.CloseLogger()
	}

	if !hasCommand {
		utils.PrintUsage()
		os.Exit(types.ExitError)
	}

	switch command {
	case "compare":
		handleCompareCommand(args)
	case "batch":
		handleBatchCommand(args)
	case "history":
		handleHistoryCommand(args)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		utils.PrintUsage()
		os.Exit(types.ExitError)
	}
}

// fatalConfig reports a configuration mistake. Misconfiguration aborts
// the whole run with the error exit code before any comparison starts.
func fatalConfig(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(types.ExitError)
}

// buildJobFromArgs assembles a single comparison job from CLI flags,
// validating everything eagerly
func buildJobFromArgs(args map[string]string) batch.Job {
	imageA := args["image-a"]
	imageB := args["image-b"]
	if imageA == "" || imageB == "" {
		utils.PrintUsage()
		fmt.Fprintln(os.Stderr)
		fatalConfig("both --image-a and --image-b are required")
	}

	algorithm := types.PixelDiff
	if name, ok := args["algorithm"]; ok && name != "" {
		var err error
		algorithm, err = types.ParseAlgorithm(name)
		if err != nil {
			fatalConfig("%v", err)
		}
	}

	opts := compare.DefaultOptions(algorithm)

	if thresholdStr, ok := args["threshold"]; ok && thresholdStr != "" {
		threshold, err := utils.ParseThreshold(thresholdStr, algorithm)
		if err != nil {
			fatalConfig("%v", err)
		}
		opts.Threshold = threshold
	}

	if _, ok := args["ignore-antialiasing"]; ok {
		opts.IgnoreAntialiasing = true
	}

	diffColor := diffimage.DefaultHighlight
	if spec, ok := args["diff-color"]; ok && spec != "" {
		var err error
		diffColor, err = utils.ParseDiffColor(spec)
		if err != nil {
			fatalConfig("%v", err)
		}
	}

	return batch.Job{
		ImageA:     imageA,
		ImageB:     imageB,
		Options:    opts,
		DiffOutput: args["diff-output"],
		DiffColor:  diffColor,
	}
}

// openHistory opens the history database when --history-db is given
func openHistory(args map[string]string) *sql.DB {
	path, ok := args["history-db"]
	if !ok || path == "" {
		return nil
	}

	db, err := database.InitDatabase(path)
	if err != nil {
		fatalConfig("cannot open history database %s: %v", path, err)
	}
	return db
}

func recordHistory(db *sql.DB, entries []report.Entry) {
	if db == nil {
		return
	}
	for _, e := range entries {
		if err := database.StoreEntry(db, e); err != nil {
			logging.LogWarning("failed to record history entry: %v", err)
			fmt.Fprintf(os.Stderr, "Warning: failed to record history entry: %v\n", err)
		}
	}
}

// emitReport writes the report to stdout in the requested format
func emitReport(args map[string]string, entries []report.Entry, single bool) {
	format := args["format"]
	switch format {
	case "", "text":
		fmt.Print(report.RenderText(entries))
	case "json":
		var out []byte
		var err error
		if single {
			out, err = report.MarshalEntry(entries[0])
		} else {
			out, err = report.MarshalEntries(entries)
		}
		if err != nil {
			fatalConfig("cannot serialize report: %v", err)
		}
		fmt.Println(string(out))
	default:
		fatalConfig("unknown output format %q (expected text or json)", format)
	}
}

func handleCompareCommand(args map[string]string) {
	// Validate the output format before doing any work
	if f := args["format"]; f != "" && f != "text" && f != "json" {
		fatalConfig("unknown output format %q (expected text or json)", f)
	}

	job := buildJobFromArgs(args)

	historyDB := openHistory(args)
	if historyDB != nil {
		defer historyDB.Close()
	}

	entry := batch.RunJob(job)
	recordHistory(historyDB, []report.Entry{entry})
	emitReport(args, []report.Entry{entry}, true)

	if entry.Err != nil {
		os.Exit(types.ExitError)
	}
	os.Exit(compare.VerdictExitCode(entry.Result.Passed))
}

func handleBatchCommand(args map[string]string) {
	configPath, ok := args["config"]
	if !ok || configPath == "" {
		utils.PrintUsage()
		fmt.Fprintln(os.Stderr)
		fatalConfig("--config is required for the batch command")
	}

	if f := args["format"]; f != "" && f != "text" && f != "json" {
		fatalConfig("unknown output format %q (expected text or json)", f)
	}

	cfg, err := batch.LoadConfig(configPath)
	if err != nil {
		fatalConfig("%v", err)
	}

	jobs, err := cfg.Jobs()
	if err != nil {
		fatalConfig("%v", err)
	}

	concurrency := signalhandler.GetOptimalProcs()
	if cfg.Defaults.Concurrency > 0 {
		concurrency = cfg.Defaults.Concurrency
	}
	if cStr, ok := args["concurrency"]; ok && cStr != "" {
		c, err := strconv.Atoi(cStr)
		if err != nil || c < 1 {
			fatalConfig("invalid concurrency %q", cStr)
		}
		concurrency = c
	}

	historyDB := openHistory(args)
	if historyDB != nil {
		defer historyDB.Close()
	}

	logging.DebugLog("Starting batch of %d comparisons with %d workers", len(jobs), concurrency)
	startTime := time.Now()

	entries := batch.Run(jobs, concurrency, true)
	summary := batch.Summarize(entries, time.Since(startTime))

	recordHistory(historyDB, entries)
	emitReport(args, entries, false)

	if args["format"] != "json" {
		fmt.Printf("\nBatch complete: %d passed, %d failed, %d errors in %v.\n",
			summary.Passed, summary.Failed, summary.Errored,
			summary.Duration.Round(time.Millisecond))
	}

	os.Exit(summary.ExitCode())
}

func handleHistoryCommand(args map[string]string) {
	dbPath := utils.GetDefaultHistoryPath()
	if custom, ok := args["database"]; ok && custom != "" {
		dbPath = custom
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fatalConfig("history database does not exist: %s", dbPath)
	}

	limit := 20
	if limitStr, ok := args["limit"]; ok && limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			fatalConfig("invalid limit %q", limitStr)
		}
		limit = parsed
	}

	db, err := database.OpenDatabase(dbPath)
	if err != nil {
		fatalConfig("cannot open history database: %v", err)
	}
	defer db.Close()

	entries, err := database.RecentRuns(db, limit)
	if err != nil {
		fatalConfig("%v", err)
	}

	if len(entries) == 0 {
		fmt.Println("No recorded comparisons.")
		return
	}

	fmt.Printf("Recent comparisons (newest first):\n")
	for _, e := range entries {
		label := e.ImageA + " vs " + e.ImageB
		if e.Name != "" {
			label = fmt.Sprintf("%q %s", e.Name, label)
		}
		if e.ErrorKind != "" {
			fmt.Printf("  [%s] %s - error (%s): %s\n", e.CreatedAt, label, e.ErrorKind, e.ErrorMessage)
		} else {
			fmt.Printf("  [%s] %s - %s score=%.6f passed=%v\n",
				e.CreatedAt, label, e.Algorithm, e.Score, e.Passed)
		}
	}

	stats, err := database.GetRunStats(db)
	if err == nil && stats != nil {
		fmt.Printf("\nSummary:\n")
		fmt.Printf("- Total recorded runs: %d\n", stats.TotalRuns)
		fmt.Printf("- Passed: %d, Failed: %d, Errors: %d\n", stats.Passed, stats.Failed, stats.Errored)
	}
}
