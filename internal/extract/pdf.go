package extract

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// noTextSentinel is returned when rasterization produces zero page images.
const noTextSentinel = "[No text extracted from PDF]"

// PDF rasterizes every page of the PDF to PNG, recognizes each page in
// order, and joins the per-page text under "--- Page n ---" markers. Like
// Image, all failure modes resolve to a returned string.
func (x *Extractor) PDF(path string) string {
	dir := filepath.Join(x.tempDir, "ocrflow-"+uuid.New().String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Sprintf("[PDF Error] Could not convert PDF: %s", err)
	}
	defer os.RemoveAll(dir)

	// pdftoppm zero-pads page numbers in the produced filenames, so the
	// lexicographic order of "page-*.png" is ascending page order.
	prefix := filepath.Join(dir, "page")
	res := run(x.pdfTimeout, x.pdftoppmPath, "-png", "-r", strconv.Itoa(x.dpi), path, prefix)
	if res.status != runOK {
		return fmt.Sprintf("[PDF Error] Could not convert PDF: %s", res.output)
	}

	pages, err := filepath.Glob(filepath.Join(dir, "*.png"))
	if err != nil {
		return fmt.Sprintf("[PDF Error] Could not convert PDF: %s", err)
	}
	sort.Strings(pages)

	if len(pages) == 0 {
		return noTextSentinel
	}

	slog.Debug("rasterized PDF", "path", path, "pages", len(pages))

	blocks := make([]string, 0, len(pages))
	for i, page := range pages {
		blocks = append(blocks, fmt.Sprintf("--- Page %d ---\n%s", i+1, x.Image(page)))
	}
	return strings.Join(blocks, "\n\n")
}
