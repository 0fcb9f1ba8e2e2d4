package extract

import (
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ocrflow/ocrflow/internal/config"
)

// pageStub renders fake page images under the prefix pdftoppm receives as
// its final argument, in deliberately scrambled creation order.
const pageStub = `for i in 03 01 02; do : > "$5-$i.png"; done`

func TestPDFPageOrdering(t *testing.T) {
	dir := t.TempDir()
	ppm := writeStub(t, dir, "pdftoppm", pageStub)
	tess := writeStub(t, dir, "tesseract", `basename "$1"`)

	x := testExtractor(t, tess, ppm, 10*time.Second)

	got := x.PDF("/some/doc.pdf")
	want := "--- Page 1 ---\npage-01.png\n\n" +
		"--- Page 2 ---\npage-02.png\n\n" +
		"--- Page 3 ---\npage-03.png"
	if got != want {
		t.Fatalf("expected pages in sorted order:\n%q\ngot:\n%q", want, got)
	}

	if n := strings.Count(got, "--- Page "); n != 3 {
		t.Fatalf("expected 3 page markers, got %d", n)
	}
}

func TestPDFRasterizerArgs(t *testing.T) {
	dir := t.TempDir()
	ppm := writeStub(t, dir, "pdftoppm", `echo "$1 $2 $3 $4" > `+dir+`/argv; `+pageStub)
	tess := writeStub(t, dir, "tesseract", `echo text`)

	x := testExtractor(t, tess, ppm, 10*time.Second)
	x.PDF("/some/doc.pdf")

	argv, err := os.ReadFile(dir + "/argv")
	if err != nil {
		t.Fatalf("read recorded argv: %v", err)
	}
	if got := strings.TrimSpace(string(argv)); got != "-png -r 300 /some/doc.pdf" {
		t.Fatalf("unexpected rasterizer argv %q", got)
	}
}

func TestPDFNoPages(t *testing.T) {
	dir := t.TempDir()
	ppm := writeStub(t, dir, "pdftoppm", `exit 0`)
	tess := writeStub(t, dir, "tesseract", `echo text`)

	x := testExtractor(t, tess, ppm, 10*time.Second)

	if got := x.PDF("/some/doc.pdf"); got != noTextSentinel {
		t.Fatalf("expected %q, got %q", noTextSentinel, got)
	}
}

func TestPDFRasterizeError(t *testing.T) {
	dir := t.TempDir()
	ppm := writeStub(t, dir, "pdftoppm", `echo "Syntax Error: broken xref" >&2; exit 1`)
	tess := writeStub(t, dir, "tesseract", `echo text`)

	x := testExtractor(t, tess, ppm, 10*time.Second)

	got := x.PDF("/some/doc.pdf")
	if got != "[PDF Error] Could not convert PDF: Syntax Error: broken xref" {
		t.Fatalf("expected tagged rasterizer stderr, got %q", got)
	}
}

func TestPDFRasterizeTimeout(t *testing.T) {
	dir := t.TempDir()
	ppm := writeStub(t, dir, "pdftoppm", `sleep 10`)
	tess := writeStub(t, dir, "tesseract", `echo text`)

	x := testExtractor(t, tess, ppm, 100*time.Millisecond)

	got := x.PDF("/some/doc.pdf")
	if got != "[PDF Error] Could not convert PDF: Processing timed out" {
		t.Fatalf("expected timeout message, got %q", got)
	}
}

func TestPDFPageFailureDoesNotAbort(t *testing.T) {
	dir := t.TempDir()
	ppm := writeStub(t, dir, "pdftoppm", pageStub)
	tess := writeStub(t, dir, "tesseract", `case "$1" in
*-02.png) echo "bad page" >&2; exit 1 ;;
*) basename "$1" ;;
esac`)

	x := testExtractor(t, tess, ppm, 10*time.Second)

	got := x.PDF("/some/doc.pdf")
	if !strings.Contains(got, "--- Page 2 ---\n[OCR Error] bad page") {
		t.Fatalf("expected inline page-2 failure, got %q", got)
	}
	if !strings.Contains(got, "--- Page 3 ---\npage-03.png") {
		t.Fatalf("expected page 3 to be processed after page-2 failure, got %q", got)
	}
}

func TestPDFScratchDirCleanup(t *testing.T) {
	dir := t.TempDir()
	scratch := t.TempDir()

	cases := []struct {
		name string
		stub string
	}{
		{"success", pageStub},
		{"no pages", `exit 0`},
		{"rasterize failure", `echo "broken" >&2; exit 1`},
	}

	for _, tc := range cases {
		ppm := writeStub(t, dir, fmt.Sprintf("pdftoppm-%s", strings.ReplaceAll(tc.name, " ", "-")), tc.stub)
		tess := writeStub(t, dir, "tesseract", `echo text`)

		x := New(
			config.OCRConfig{TesseractPath: tess, OEM: 3, PSM: 3, Timeout: config.Duration(10 * time.Second)},
			config.PDFConfig{PdftoppmPath: ppm, DPI: 300, Timeout: config.Duration(10 * time.Second)},
			scratch,
		)
		x.PDF("/some/doc.pdf")

		entries, err := os.ReadDir(scratch)
		if err != nil {
			t.Fatalf("%s: read scratch dir: %v", tc.name, err)
		}
		if len(entries) != 0 {
			t.Fatalf("%s: expected empty scratch dir, found %d entries", tc.name, len(entries))
		}
	}
}
