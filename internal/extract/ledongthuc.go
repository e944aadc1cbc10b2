package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joseph-ayodele/pagetext/internal/common"
	"github.com/ledongthuc/pdf"
)

// LedongthucOpener reads the text layer with github.com/ledongthuc/pdf.
type LedongthucOpener struct {
	logger *slog.Logger
}

func NewLedongthucOpener(logger *slog.Logger) *LedongthucOpener {
	if logger == nil {
		logger = slog.Default()
	}
	return &LedongthucOpener{logger: logger}
}

func (o *LedongthucOpener) Open(ctx context.Context, path string) (doc Document, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, common.PanicError(r)
		}
		if err != nil {
			_ = f.Close()
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return nil, common.WrapError(err, "stat "+path)
	}
	r, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return nil, common.WrapError(err, "open pdf "+path)
	}

	n := r.NumPage()
	o.logger.Debug("pdf opened", "backend", "ledongthuc", "path", path, "pages", n, "bytes", info.Size())
	return &ledongthucDocument{f: f, r: r, pages: n}, nil
}

type ledongthucDocument struct {
	f     *os.File
	r     *pdf.Reader
	pages int
}

func (d *ledongthucDocument) NumPages() int { return d.pages }

func (d *ledongthucDocument) PageText(ctx context.Context, n int) (text string, err error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := checkPage(n, d.pages); err != nil {
		return "", err
	}
	defer func() {
		if r := recover(); r != nil {
			text, err = "", common.PanicError(r)
		}
	}()

	p := d.r.Page(n)
	if p.V.IsNull() {
		return "", nil
	}
	// nil lets the library load this page's own font resources.
	text, err = p.GetPlainText(nil)
	if err != nil {
		return "", common.WrapError(err, fmt.Sprintf("read pdf page %d", n))
	}
	return blankToEmpty(text), nil
}

func (d *ledongthucDocument) Close() error {
	if d.f == nil {
		return nil
	}
	err := d.f.Close()
	d.f = nil
	return err
}
