// Package extract turns uploaded images and PDFs into text by driving two
// external tools: tesseract for recognition and pdftoppm for rasterizing PDF
// pages. Recognition failures are reported in-band as bracket-tagged strings
// rather than errors, so callers always get a text value back.
package extract

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ocrflow/ocrflow/internal/config"
)

// Extractor runs OCR on single images and multi-page PDFs.
type Extractor struct {
	tesseractPath string
	language      string
	oem           int
	psm           int
	ocrTimeout    time.Duration

	pdftoppmPath string
	dpi          int
	pdfTimeout   time.Duration

	tempDir string
}

// New creates an Extractor from the OCR and PDF tool configuration. tempDir
// is the root for per-request scratch directories; empty means the system
// temp directory.
func New(ocr config.OCRConfig, pdf config.PDFConfig, tempDir string) *Extractor {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &Extractor{
		tesseractPath: ocr.TesseractPath,
		language:      ocr.Language,
		oem:           ocr.OEM,
		psm:           ocr.PSM,
		ocrTimeout:    ocr.Timeout.Duration(),
		pdftoppmPath:  pdf.PdftoppmPath,
		dpi:           pdf.DPI,
		pdfTimeout:    pdf.Timeout.Duration(),
		tempDir:       tempDir,
	}
}

// Extract dispatches on the validated file extension: "pdf" goes through
// rasterization, everything else is treated as a single image.
func (x *Extractor) Extract(path, ext string) string {
	if ext == "pdf" {
		return x.PDF(path)
	}
	return x.Image(path)
}

// Image runs tesseract on one image file and returns the recognized text.
// All failure modes resolve to a returned "[OCR Error] ..." string; this
// function never fails outward.
func (x *Extractor) Image(path string) string {
	args := []string{path, "stdout", "--oem", strconv.Itoa(x.oem), "--psm", strconv.Itoa(x.psm)}
	if x.language != "" {
		args = append(args, "-l", x.language)
	}

	res := run(x.ocrTimeout, x.tesseractPath, args...)
	if res.status == runOK {
		return res.output
	}
	return fmt.Sprintf("[OCR Error] %s", res.output)
}

// EngineVersion probes tesseract --version and returns the first line of its
// output. Used by the health endpoint.
func (x *Extractor) EngineVersion() (string, error) {
	res := run(x.ocrTimeout, x.tesseractPath, "--version")
	if res.status != runOK {
		return "", fmt.Errorf("tesseract --version: %s", res.output)
	}
	line, _, _ := strings.Cut(res.output, "\n")
	return strings.TrimSpace(line), nil
}
