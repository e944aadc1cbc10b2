package report

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/joseph-ayodele/pagetext/constants"
	"github.com/joseph-ayodele/pagetext/internal/common"
	"github.com/joseph-ayodele/pagetext/internal/extract"
)

type Options struct {
	Format constants.Format
	// ContinueOnError reports a failing page and moves on instead of
	// aborting the run.
	ContinueOnError bool
	// Backend is recorded in the summary and in logs.
	Backend constants.Backend
}

// PageResult is the outcome for one page.
type PageResult struct {
	Number int
	Status constants.PageStatus
	Text   string
	Err    error
}

// Summary describes a finished run. Err is nil when every page was reported.
type Summary struct {
	RunID       uuid.UUID
	Path        string
	Backend     constants.Backend
	Pages       int
	TextPages   int
	ImagePages  int
	FailedPages int
	Duration    time.Duration
	Err         error
}

type Reporter struct {
	Opener extract.Opener
	Out    io.Writer
	Opts   Options
	// Log may be nil; Report then uses the context logger.
	Log *slog.Logger
}

func NewReporter(opener extract.Opener, out io.Writer, opts Options, log *slog.Logger) *Reporter {
	if opts.Format == "" {
		opts.Format = constants.FormatText
	}
	return &Reporter{Opener: opener, Out: out, Opts: opts, Log: log}
}

// Report reads path and writes one entry per page to r.Out, in document
// order. Failures are written as a single error entry and returned in
// Summary.Err; Report itself never fails.
func (r *Reporter) Report(ctx context.Context, path string) (sum Summary) {
	start := time.Now()

	runID := common.RunIDFromContext(ctx)
	if runID == uuid.Nil {
		runID = uuid.New()
		ctx = common.WithRunID(ctx, runID)
	}
	base := r.Log
	if base == nil {
		base = common.LoggerFromContext(ctx)
	}
	log := base.With("run_id", runID, "path", path)
	sum = Summary{RunID: runID, Path: path, Backend: r.Opts.Backend}

	em, err := newEmitter(r.Opts.Format, r.Out, runID)
	if err != nil {
		// Unknown format: fall back to text so the failure is still visible.
		em = newTextEmitter(r.Out)
		em.Reading(path)
		sum.Err = common.NewProcessingError(common.KindUnknown, path, 0, err)
		em.Failure(sum.Err)
		log.Error("report setup failed", "error", err)
		return sum
	}

	em.Reading(path)
	if err := r.run(ctx, path, em, &sum, log); err != nil {
		sum.Err = err
		em.Failure(err)
		log.Warn("report failed", "kind", common.KindOf(err).String(), "error", err)
	}
	if werr := em.Err(); werr != nil {
		log.Error("write report", "error", werr)
		if sum.Err == nil {
			sum.Err = common.NewProcessingError(common.KindUnknown, path, 0, werr)
		}
	}

	sum.Duration = time.Since(start)
	log.Info("report finished",
		"backend", sum.Backend,
		"pages", sum.Pages,
		"text_pages", sum.TextPages,
		"image_pages", sum.ImagePages,
		"failed_pages", sum.FailedPages,
		"duration_ms", sum.Duration.Milliseconds(),
	)
	return sum
}

// run returns the error that ends the run. Page failures tolerated under
// ContinueOnError are recorded in sum.Err instead.
func (r *Reporter) run(ctx context.Context, path string, em emitter, sum *Summary, log *slog.Logger) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("panic during report", "panic", rec)
			err = common.NewProcessingError(common.KindUnknown, path, 0, common.PanicError(rec))
		}
	}()

	doc, err := r.Opener.Open(ctx, path)
	if err != nil {
		return common.OpenError(path, err)
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil {
			log.Warn("close document", "error", cerr)
		}
	}()

	sum.Pages = doc.NumPages()
	log.Debug("document opened", "pages", sum.Pages)

	for n := 1; n <= sum.Pages; n++ {
		if cerr := ctx.Err(); cerr != nil {
			return common.ExtractionError(path, n, cerr)
		}

		text, perr := doc.PageText(ctx, n)
		if perr != nil {
			pe := common.ExtractionError(path, n, perr)
			if !r.Opts.ContinueOnError || pe.Kind == common.KindCanceled {
				return pe
			}
			log.Warn("page failed, continuing", "page", n, "error", perr)
			sum.FailedPages++
			if sum.Err == nil {
				sum.Err = pe
			}
			em.Page(PageResult{Number: n, Status: constants.PageStatusFailed, Err: pe})
			continue
		}

		res := PageResult{Number: n, Status: constants.PageStatusText, Text: text}
		if text == "" {
			res.Status = constants.PageStatusImageBased
			sum.ImagePages++
		} else {
			sum.TextPages++
		}
		log.Debug("page reported", "page", n, "status", string(res.Status), "chars", len(text))
		em.Page(res)
	}
	return nil
}
