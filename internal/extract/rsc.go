package extract

import (
	"context"
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/joseph-ayodele/pagetext/internal/common"
	"rsc.io/pdf"
)

// RSCOpener reads the text layer with rsc.io/pdf. The library returns
// positioned glyphs, which are joined back into lines here.
type RSCOpener struct {
	logger *slog.Logger
}

func NewRSCOpener(logger *slog.Logger) *RSCOpener {
	if logger == nil {
		logger = slog.Default()
	}
	return &RSCOpener{logger: logger}
}

func (o *RSCOpener) Open(ctx context.Context, path string) (doc Document, err error) {
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
	o.logger.Debug("pdf opened", "backend", "rsc", "path", path, "pages", n, "bytes", info.Size())
	return &rscDocument{f: f, r: r, pages: n}, nil
}

type rscDocument struct {
	f     *os.File
	r     *pdf.Reader
	pages int
}

func (d *rscDocument) NumPages() int { return d.pages }

func (d *rscDocument) PageText(ctx context.Context, n int) (text string, err error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := checkPage(n, d.pages); err != nil {
		return "", err
	}
	// Content panics on malformed content streams.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", common.PanicError(r)
		}
	}()

	p := d.r.Page(n)
	if p.V.Kind() == pdf.Null {
		return "", nil
	}
	return joinGlyphs(p.Content().Text), nil
}

func (d *rscDocument) Close() error {
	if d.f == nil {
		return nil
	}
	err := d.f.Close()
	d.f = nil
	return err
}

// joinGlyphs rebuilds text from glyphs in content-stream order: a baseline
// change starts a new line, a horizontal gap wider than half a glyph is a space.
func joinGlyphs(glyphs []pdf.Text) string {
	var b strings.Builder
	for i, g := range glyphs {
		if i > 0 {
			prev := glyphs[i-1]
			switch {
			case math.Abs(g.Y-prev.Y) > lineTolerance(prev):
				b.WriteByte('\n')
			case g.X-(prev.X+prev.W) > spaceGap(prev):
				b.WriteByte(' ')
			}
		}
		b.WriteString(g.S)
	}
	return blankToEmpty(b.String())
}

func lineTolerance(t pdf.Text) float64 {
	if t.FontSize > 0 {
		return t.FontSize / 2
	}
	return 1
}

func spaceGap(t pdf.Text) float64 {
	if t.W > 0 {
		return t.W / 2
	}
	if t.FontSize > 0 {
		return t.FontSize / 4
	}
	return 1
}
