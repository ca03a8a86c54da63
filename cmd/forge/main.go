// Command forge turns a natural-language programming task into a validated
// artifact by running it through the interpret, plan, produce, validate, and
// refine workflow. Final records are written to stdout as JSON. With
// persistence enabled, -show, -list, and -delete manage stored runs.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/JaimeStill/forge/internal/config"
	"github.com/JaimeStill/forge/internal/infrastructure"
	"github.com/JaimeStill/forge/internal/runs"
	"github.com/JaimeStill/forge/internal/workflow"
)

// Exit codes.
const (
	exitOK      = 0
	exitError   = 1
	exitInvalid = 2
)

type flags struct {
	task        string
	format      string
	complexity  string
	tests       bool
	comments    bool
	batch       string
	logJSON     bool
	verbose     bool
	metricsAddr string
	show        string
	list        bool
	remove      string
	outcome     string
	limit       int
}

func parseFlags(args []string, output io.Writer) (*flags, error) {
	f := &flags{}
	fs := flag.NewFlagSet("forge", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&f.task, "task", "", `Task description ("-" reads stdin)`)
	fs.StringVar(&f.format, "format", workflow.DefaultFormat, "Artifact format")
	fs.StringVar(&f.complexity, "complexity", workflow.DefaultComplexity, "Complexity hint: simple, moderate, complex")
	fs.BoolVar(&f.tests, "tests", false, "Include tests in the artifact")
	fs.BoolVar(&f.comments, "comments", false, "Include explanatory comments in the artifact")
	fs.StringVar(&f.batch, "batch", "", `JSON file holding an array of inputs ("-" reads stdin)`)
	fs.BoolVar(&f.logJSON, "log-json", false, "Write logs as JSON")
	fs.BoolVar(&f.verbose, "v", false, "Log stage-level detail")
	fs.StringVar(&f.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running")
	fs.StringVar(&f.show, "show", "", "Print the stored run with this id")
	fs.BoolVar(&f.list, "list", false, "List stored runs, newest first")
	fs.StringVar(&f.remove, "delete", "", "Delete the stored run with this id")
	fs.StringVar(&f.outcome, "outcome", "", "With -list, only runs with this outcome: valid, exhausted, cancelled")
	fs.IntVar(&f.limit, "limit", runs.DefaultListLimit, "With -list, the maximum number of runs")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	f, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		return exitError
	}

	level := slog.LevelWarn
	if f.verbose {
		level = slog.LevelInfo
	}
	logger := infrastructure.NewLogger(stderr, f.logJSON, level)

	if err := f.validateStore(); err != nil {
		logger.Error("invalid flags", "error", err)
		return exitError
	}

	var inputs []workflow.Input
	if !f.storeCommand() {
		inputs, err = readInputs(f, stdin)
		if err != nil {
			logger.Error("invalid input", "error", err)
			return exitError
		}
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("config load failed", "error", err)
		return exitError
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	infra, err := infrastructure.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("infrastructure init failed", "error", err)
		return exitError
	}

	app, err := NewApp(ctx, cfg, infra, nil, f.metricsAddr)
	if err != nil {
		logger.Error("init failed", "error", err)
		return exitError
	}

	if err := app.Start(); err != nil {
		logger.Error("start failed", "error", err)
		_ = app.Shutdown(cfg.ShutdownTimeoutDuration())
		return exitError
	}
	defer func() {
		if err := app.Shutdown(cfg.ShutdownTimeoutDuration()); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	if f.storeCommand() {
		if err := runStore(ctx, f, app.runs, stdout); err != nil {
			logger.Error("stored run command failed", "error", err)
			return exitError
		}
		return exitOK
	}

	results := app.Execute(ctx, inputs)

	if err := writeResults(stdout, results, f.batch != ""); err != nil {
		logger.Error("write results failed", "error", err)
		return exitError
	}

	return exitCode(results, logger)
}

type output struct {
	Index  int              `json:"index"`
	Record *workflow.Record `json:"record,omitempty"`
	Error  string           `json:"error,omitempty"`
}

func writeResults(w io.Writer, results []workflow.BatchResult, batch bool) error {
	out := make([]output, len(results))
	for i, r := range results {
		out[i] = output{Index: r.Index, Record: r.Record}
		if r.Err != nil {
			out[i].Error = r.Err.Error()
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if !batch && len(out) == 1 && out[0].Record != nil {
		return enc.Encode(out[0].Record)
	}
	return enc.Encode(out)
}

func exitCode(results []workflow.BatchResult, logger *slog.Logger) int {
	code := exitOK
	for _, r := range results {
		switch {
		case r.Err != nil:
			if errors.Is(r.Err, workflow.ErrCancelled) {
				logger.Warn("run cancelled", "index", r.Index, "error", r.Err)
			} else {
				logger.Error("run failed", "index", r.Index, "error", r.Err)
			}
			return exitError
		case !r.Record.IsValid:
			code = exitInvalid
		}
	}
	return code
}
