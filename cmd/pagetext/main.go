package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/joseph-ayodele/pagetext/constants"
	"github.com/joseph-ayodele/pagetext/internal/common"
	"github.com/joseph-ayodele/pagetext/internal/extract"
	"github.com/joseph-ayodele/pagetext/internal/report"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run returns the process exit code: 2 for usage or configuration errors,
// 0 once a report has been written, whatever its outcome.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("pagetext", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: pagetext [flags] <path-to-pdf>")
		fs.PrintDefaults()
	}

	configPath := fs.String("config", os.Getenv(common.ConfigFileEnv), "YAML config file")
	backend := fs.String("backend", "", "document backend: "+strings.Join(constants.BackendNames(), " | "))
	format := fs.String("format", "", "output format: text | jsonl")
	continueOnError := fs.Bool("continue-on-error", false, "report failing pages and keep going")
	timeout := fs.Duration("timeout", 0, "overall time limit (0 keeps the configured value)")
	logLevel := fs.String("log-level", "", "debug | info | warn | error")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := common.LoadConfigFile(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "pagetext: %v\n", err)
		return 2
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "backend":
			cfg.Extract.Backend = *backend
		case "format":
			cfg.Report.Format = *format
		case "continue-on-error":
			cfg.Report.ContinueOnError = *continueOnError
		case "timeout":
			cfg.Report.Timeout = *timeout
		case "log-level":
			cfg.Log.Level = *logLevel
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "pagetext: %v\n", err)
		return 2
	}

	logger := newLogger(stderr, cfg.Log)

	if fs.NArg() != 1 {
		logger.Error("usage", "cmd", "pagetext [flags] <path-to-pdf>", "args", fs.NArg())
		fs.Usage()
		return 2
	}
	path := fs.Arg(0)
	if !constants.IsPDFExt(filepath.Ext(path)) {
		logger.Warn("path does not have a .pdf extension", "path", path)
	}

	b, _ := constants.CanonicalizeBackend(cfg.Extract.Backend)
	f, _ := constants.CanonicalizeFormat(cfg.Report.Format)
	opener, err := extract.NewOpener(b, cfg.Extract, logger)
	if err != nil {
		logger.Error("build opener", "backend", b, "error", err)
		return 2
	}

	if cfg.Report.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Report.Timeout)
		defer cancel()
	}
	ctx = common.WithRunID(ctx, uuid.New())
	ctx = common.WithLogger(ctx, logger)

	r := report.NewReporter(opener, stdout, report.Options{
		Format:          f,
		ContinueOnError: cfg.Report.ContinueOnError,
		Backend:         b,
	}, nil)
	sum := r.Report(ctx, path)
	if sum.Err != nil {
		logger.Debug("report completed with error", "kind", common.KindOf(sum.Err).String())
	}
	return 0
}

// newLogger writes to stderr so stdout carries only the report.
func newLogger(w io.Writer, cfg common.LogConfig) *slog.Logger {
	lvl, _ := cfg.SlogLevel()
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}
