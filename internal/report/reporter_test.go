package report

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/joseph-ayodele/pagetext/constants"
	"github.com/joseph-ayodele/pagetext/internal/common"
	"github.com/joseph-ayodele/pagetext/internal/extract"
	"github.com/joseph-ayodele/pagetext/internal/pdffixture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPage struct {
	text  string
	err   error
	panic any
}

// stubOpener records open/close calls on the documents it hands out.
type stubOpener struct {
	pages   []stubPage
	openErr error

	opens, closes int
	extracted     []int
}

func (s *stubOpener) Open(_ context.Context, _ string) (extract.Document, error) {
	s.opens++
	if s.openErr != nil {
		return nil, s.openErr
	}
	return &stubDoc{o: s}, nil
}

type stubDoc struct{ o *stubOpener }

func (d *stubDoc) NumPages() int { return len(d.o.pages) }

func (d *stubDoc) PageText(_ context.Context, n int) (string, error) {
	d.o.extracted = append(d.o.extracted, n)
	p := d.o.pages[n-1]
	if p.panic != nil {
		panic(p.panic)
	}
	return p.text, p.err
}

func (d *stubDoc) Close() error {
	d.o.closes++
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func runReport(t *testing.T, o extract.Opener, opts Options, path string) (string, Summary) {
	t.Helper()
	var out bytes.Buffer
	sum := NewReporter(o, &out, opts, quietLogger()).Report(context.Background(), path)
	return out.String(), sum
}

func TestReportTextPages(t *testing.T) {
	o := &stubOpener{pages: []stubPage{{text: "alpha"}, {text: "beta\ngamma"}, {text: "delta\n"}}}

	out, sum := runReport(t, o, Options{}, "/docs/a.pdf")

	want := "Reading /docs/a.pdf\n" +
		"--- PAGE 1 START ---\nalpha\n--- PAGE 1 END ---\n" +
		"--- PAGE 2 START ---\nbeta\ngamma\n--- PAGE 2 END ---\n" +
		"--- PAGE 3 START ---\ndelta\n--- PAGE 3 END ---\n"
	assert.Equal(t, want, out)
	assert.NoError(t, sum.Err)
	assert.Equal(t, 3, sum.Pages)
	assert.Equal(t, 3, sum.TextPages)
	assert.Equal(t, []int{1, 2, 3}, o.extracted)
	assert.Equal(t, 1, o.opens)
	assert.Equal(t, 1, o.closes)
	assert.NotEqual(t, uuid.Nil, sum.RunID)
}

func TestReportImageBasedPage(t *testing.T) {
	o := &stubOpener{pages: []stubPage{{text: "cover"}, {text: ""}, {text: " \n\t"}}}

	out, sum := runReport(t, o, Options{}, "scan.pdf")

	want := "Reading scan.pdf\n" +
		"--- PAGE 1 START ---\ncover\n--- PAGE 1 END ---\n" +
		"--- PAGE 2 IS IMAGE BASED ---\n" +
		"--- PAGE 3 START ---\n \n\t\n--- PAGE 3 END ---\n"
	assert.Equal(t, want, out)
	assert.NotContains(t, out, "PAGE 2 START")
	assert.Equal(t, 1, sum.ImagePages)
	assert.Equal(t, 2, sum.TextPages)
}

func TestReportOpenFailure(t *testing.T) {
	o := &stubOpener{openErr: errors.New("no such file or directory")}

	out, sum := runReport(t, o, Options{}, "missing.pdf")

	assert.Equal(t, "Reading missing.pdf\nError: no such file or directory\n", out)
	require.Error(t, sum.Err)
	assert.Equal(t, common.KindOpenFailed, common.KindOf(sum.Err))
	assert.Equal(t, 0, o.closes)
}

func TestReportZeroPages(t *testing.T) {
	o := &stubOpener{}
	out, sum := runReport(t, o, Options{}, "empty.pdf")
	assert.Equal(t, "Reading empty.pdf\n", out)
	assert.NoError(t, sum.Err)
	assert.Equal(t, 1, o.closes)
}

func TestReportIsIdempotent(t *testing.T) {
	o := &stubOpener{pages: []stubPage{{text: "one"}, {}, {text: "three"}}}
	first, _ := runReport(t, o, Options{}, "a.pdf")
	second, _ := runReport(t, o, Options{}, "a.pdf")
	assert.Equal(t, first, second)
}

func TestReportAbortsOnPageError(t *testing.T) {
	o := &stubOpener{pages: []stubPage{{text: "ok"}, {err: errors.New("bad content stream")}, {text: "never"}}}

	out, sum := runReport(t, o, Options{}, "a.pdf")

	want := "Reading a.pdf\n" +
		"--- PAGE 1 START ---\nok\n--- PAGE 1 END ---\n" +
		"Error: page 2: bad content stream\n"
	assert.Equal(t, want, out)
	assert.Equal(t, common.KindExtractionFailed, common.KindOf(sum.Err))
	assert.Equal(t, []int{1, 2}, o.extracted)
	assert.Equal(t, 1, o.closes, "document must be released after a failure")
}

func TestReportReleasesDocumentOnPanic(t *testing.T) {
	o := &stubOpener{pages: []stubPage{{text: "ok"}, {panic: "index out of range"}}}

	out, sum := runReport(t, o, Options{}, "a.pdf")

	assert.Equal(t, 1, o.opens)
	assert.Equal(t, 1, o.closes)
	require.Error(t, sum.Err)
	assert.ErrorIs(t, sum.Err, common.ErrPanic)
	assert.Equal(t, common.KindUnknown, common.KindOf(sum.Err))

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	assert.Equal(t, "Error: recovered panic: index out of range", lines[len(lines)-1])
	assert.Equal(t, 1, strings.Count(out, "Error:"))
}

func TestReportContinueOnError(t *testing.T) {
	o := &stubOpener{pages: []stubPage{{err: errors.New("bad font")}, {text: "two"}, {}}}

	out, sum := runReport(t, o, Options{ContinueOnError: true}, "a.pdf")

	want := "Reading a.pdf\n" +
		"--- PAGE 1 ERROR: bad font ---\n" +
		"--- PAGE 2 START ---\ntwo\n--- PAGE 2 END ---\n" +
		"--- PAGE 3 IS IMAGE BASED ---\n"
	assert.Equal(t, want, out)
	assert.Equal(t, 1, sum.FailedPages)
	assert.Equal(t, common.KindExtractionFailed, common.KindOf(sum.Err))
	assert.Equal(t, []int{1, 2, 3}, o.extracted)
	assert.Equal(t, 1, o.closes)
}

func TestReportCanceled(t *testing.T) {
	o := &stubOpener{pages: []stubPage{{text: "one"}}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	sum := NewReporter(o, &out, Options{ContinueOnError: true}, quietLogger()).Report(ctx, "a.pdf")

	assert.Equal(t, common.KindCanceled, common.KindOf(sum.Err))
	assert.Equal(t, "Reading a.pdf\nError: page 1: context canceled\n", out.String())
	assert.Empty(t, o.extracted)
	assert.Equal(t, 1, o.closes)
}

func TestReportUsesContextRunID(t *testing.T) {
	id := uuid.New()
	ctx := common.WithRunID(context.Background(), id)
	sum := NewReporter(&stubOpener{}, io.Discard, Options{}, nil).Report(ctx, "a.pdf")
	assert.Equal(t, id, sum.RunID)
}

func TestReportUnknownFormat(t *testing.T) {
	o := &stubOpener{pages: []stubPage{{text: "x"}}}
	out, sum := runReport(t, o, Options{Format: "xml"}, "a.pdf")
	assert.True(t, strings.HasPrefix(out, "Reading a.pdf\nError: "))
	assert.ErrorIs(t, sum.Err, common.ErrInvalidInput)
	assert.Equal(t, 0, o.opens)
}

type failingWriter struct{ writes int }

func (w *failingWriter) Write(p []byte) (int, error) {
	w.writes++
	return 0, errors.New("disk full")
}

func TestReportStopsWritingAfterWriteError(t *testing.T) {
	o := &stubOpener{pages: []stubPage{{text: "a"}, {text: "b"}}}
	w := &failingWriter{}
	sum := NewReporter(o, w, Options{}, quietLogger()).Report(context.Background(), "a.pdf")
	assert.Equal(t, 1, w.writes)
	require.Error(t, sum.Err)
	assert.Equal(t, common.KindUnknown, common.KindOf(sum.Err))
	assert.Contains(t, sum.Err.Error(), "disk full")
	assert.Equal(t, 1, o.closes)
}

func TestReportWriteErrorKeepsRunError(t *testing.T) {
	o := &stubOpener{openErr: errors.New("no such file or directory")}
	sum := NewReporter(o, &failingWriter{}, Options{}, quietLogger()).Report(context.Background(), "a.pdf")
	assert.Equal(t, common.KindOpenFailed, common.KindOf(sum.Err))
}

func TestReportUsesContextLogger(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	ctx := common.WithLogger(context.Background(), logger)

	o := &stubOpener{pages: []stubPage{{text: "a"}}}
	var out bytes.Buffer
	sum := NewReporter(o, &out, Options{}, nil).Report(ctx, "a.pdf")

	require.NoError(t, sum.Err)
	assert.Contains(t, logs.String(), "report finished")
	assert.Contains(t, logs.String(), "run_id="+sum.RunID.String())
	assert.NotContains(t, out.String(), "report finished")
}

func TestReportWithLedongthucBackend(t *testing.T) {
	dir := t.TempDir()
	path, err := pdffixture.WriteFile(dir, "mixed.pdf",
		pdffixture.TextPage("Week 1", "apple banana"),
		pdffixture.ImagePage(),
		pdffixture.TextPage("Week 2"),
	)
	require.NoError(t, err)

	o := extract.NewLedongthucOpener(quietLogger())
	out, sum := runReport(t, o, Options{Backend: constants.BackendLedongthuc}, path)

	require.NoError(t, sum.Err)
	assert.Equal(t, 3, sum.Pages)
	assert.True(t, strings.HasPrefix(out, "Reading "+path+"\n"))
	assert.Equal(t, 1, strings.Count(out, "--- PAGE 1 START ---"))
	assert.Contains(t, out, "apple banana")
	assert.Contains(t, out, "--- PAGE 2 IS IMAGE BASED ---\n")
	assert.Contains(t, out, "--- PAGE 3 END ---\n")
	assert.NotContains(t, out, "Error:")

	again, _ := runReport(t, o, Options{Backend: constants.BackendLedongthuc}, path)
	assert.Equal(t, out, again)
}

func TestReportMissingFileWithRealBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.pdf")
	out, sum := runReport(t, extract.NewRSCOpener(quietLogger()), Options{}, path)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Reading "+path, lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Error: "))
	assert.NotContains(t, out, "--- PAGE")
	assert.Equal(t, common.KindOpenFailed, common.KindOf(sum.Err))
}
