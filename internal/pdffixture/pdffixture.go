// Package pdffixture builds small, well-formed PDF files for tests.
//
// Every page shares one monospaced Type1 font (/F1, Courier, WinAnsi, 600
// units per glyph) so extractors that rely on glyph widths can recover word
// spacing.
package pdffixture

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Page describes one page. Lines are drawn top to bottom; a page with no
// Lines and no Raw content only strokes a path, like a scanned page with no
// text layer. Raw, when set, replaces the generated content stream.
type Page struct {
	Lines []string
	Raw   string
}

// TextPage is shorthand for a page with the given lines.
func TextPage(lines ...string) Page { return Page{Lines: lines} }

// ImagePage is shorthand for a page without a text layer.
func ImagePage() Page { return Page{} }

const (
	fontSize = 12
	leading  = 14
)

// Build returns the bytes of a PDF containing pages in order.
func Build(pages ...Page) []byte {
	var buf bytes.Buffer
	var offsets []int

	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", pageObjNum(i))
	}

	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	obj(fontDict())

	for i, p := range pages {
		content := p.content()
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
			"/Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", pageObjNum(i)+1))
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

// WriteFile writes Build(pages...) to dir/name and returns the full path.
func WriteFile(dir, name string, pages ...Page) (string, error) {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, Build(pages...), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// objects 1..3 are catalog, page tree and font; each page then takes two.
func pageObjNum(i int) int { return 4 + 2*i }

func (p Page) content() string {
	if p.Raw != "" {
		return p.Raw
	}
	if len(p.Lines) == 0 {
		return "0.5 w 72 72 m 540 720 l S"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "BT /F1 %d Tf %d TL 72 720 Td", fontSize, leading)
	for i, line := range p.Lines {
		if i > 0 {
			b.WriteString(" T*")
		}
		fmt.Fprintf(&b, " (%s) Tj", escape(line))
	}
	b.WriteString(" ET")
	return b.String()
}

func fontDict() string {
	widths := make([]string, 126-32+1)
	for i := range widths {
		widths[i] = "600"
	}
	return "<< /Type /Font /Subtype /Type1 /BaseFont /Courier /Encoding /WinAnsiEncoding " +
		"/FirstChar 32 /LastChar 126 /Widths [" + strings.Join(widths, " ") + "] >>"
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}
