package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/pagetext/constants"
	"github.com/joseph-ayodele/pagetext/internal/common"
)

// Opener opens a document for page-wise text extraction.
type Opener interface {
	Open(ctx context.Context, path string) (Document, error)
}

// Document is an open document handle. The caller owns it and must Close it.
type Document interface {
	NumPages() int
	// PageText returns the text layer of page n (1-based). An empty string
	// means the page has no extractable text; backends never return text
	// that is only whitespace.
	PageText(ctx context.Context, n int) (string, error)
	Close() error
}

// NewOpener returns the Opener for backend.
func NewOpener(backend constants.Backend, cfg common.ExtractConfig, logger *slog.Logger) (Opener, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch backend {
	case constants.BackendLedongthuc:
		return NewLedongthucOpener(logger), nil
	case constants.BackendRSC:
		return NewRSCOpener(logger), nil
	case constants.BackendPdftotext:
		return NewPdftotextOpener(cfg.Pdftotext, nil, logger), nil
	default:
		return nil, fmt.Errorf("%w: unsupported backend %q", common.ErrInvalidInput, backend)
	}
}

func checkPage(n, total int) error {
	if n < 1 || n > total {
		return fmt.Errorf("page %d out of range [1, %d]", n, total)
	}
	return nil
}

// blankToEmpty maps whitespace-only page text to "". Libraries emit stray
// newlines for pages whose content stream has text operators but no glyphs.
func blankToEmpty(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	return text
}
