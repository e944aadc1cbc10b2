package extract

import (
	"context"
	"log/slog"
	"strings"
)

// PdftotextOpener shells out to poppler's pdftotext once per document and
// splits the output on the form feed it writes after every page.
type PdftotextOpener struct {
	bin    string
	runner Runner
	logger *slog.Logger
}

// NewPdftotextOpener returns an opener running bin ("pdftotext" when empty).
// A nil runner executes the real binary.
func NewPdftotextOpener(bin string, runner Runner, logger *slog.Logger) *PdftotextOpener {
	if logger == nil {
		logger = slog.Default()
	}
	if bin == "" {
		bin = "pdftotext"
	}
	if runner == nil {
		runner = execRunner{logger: logger}
	}
	return &PdftotextOpener{bin: bin, runner: runner, logger: logger}
}

func (o *PdftotextOpener) Open(ctx context.Context, path string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := o.runner.Run(ctx, o.bin, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		// A deadline kill shows up as "signal: killed"; report the cause instead.
		if cerr := ctx.Err(); cerr != nil {
			return nil, &CommandError{Name: o.bin, Err: cerr}
		}
		return nil, newCommandError(o.bin, err, errb)
	}
	pages := splitPages(string(out))
	o.logger.Debug("pdf opened", "backend", "pdftotext", "path", path, "pages", len(pages), "bytes", len(out))
	return &pdftotextDocument{pages: pages}, nil
}

type pdftotextDocument struct {
	pages []string
}

func (d *pdftotextDocument) NumPages() int { return len(d.pages) }

func (d *pdftotextDocument) PageText(ctx context.Context, n int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := checkPage(n, len(d.pages)); err != nil {
		return "", err
	}
	return blankToEmpty(d.pages[n-1]), nil
}

func (d *pdftotextDocument) Close() error {
	d.pages = nil
	return nil
}

// splitPages splits pdftotext output on form feeds. The segment after the
// final form feed is not a page.
func splitPages(out string) []string {
	if out == "" {
		return nil
	}
	parts := strings.Split(out, "\f")
	if last := parts[len(parts)-1]; strings.TrimRight(last, "\r\n") == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}
