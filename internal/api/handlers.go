package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// allowedExtensions is the set of upload types the service accepts.
var allowedExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"tiff": true,
	"tif":  true,
	"bmp":  true,
	"gif":  true,
	"webp": true,
	"pdf":  true,
}

// fileExtension returns the lowercased substring after the final dot. A name
// without a dot has no extension and is never allowed.
func fileExtension(name string) (string, bool) {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return "", false
	}
	ext := strings.ToLower(name[i+1:])
	return ext, allowedExtensions[ext]
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type ocrResponse struct {
	Text       string `json:"text"`
	Filename   string `json:"filename"`
	Characters int    `json:"characters"`
	Success    bool   `json:"success"`
}

// handleOCR accepts a multipart upload in the "file" field, runs extraction,
// and returns the recognized text. Recognition-level failures come back as
// bracket-tagged text inside a 200 response; only protocol faults get an
// HTTP error status.
func (s *Server) handleOCR(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxUploadBytes)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusBadRequest, "Request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "Empty filename")
		return
	}

	ext, ok := fileExtension(header.Filename)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unsupported file type: "+header.Filename)
		return
	}

	tmpPath, err := s.saveUpload(file, ext)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer os.Remove(tmpPath)

	text := s.extractor.Extract(tmpPath, ext)

	slog.Info("processed upload",
		"filename", header.Filename,
		"type", ext,
		"characters", utf8.RuneCountInString(text))

	writeJSON(w, http.StatusOK, ocrResponse{
		Text:       text,
		Filename:   header.Filename,
		Characters: utf8.RuneCountInString(text),
		Success:    true,
	})
}

// saveUpload writes the upload body to a uniquely named temp file whose
// suffix matches the validated extension. The caller removes it.
func (s *Server) saveUpload(src io.Reader, ext string) (string, error) {
	dir := s.cfg.Server.TempDirectory
	if dir == "" {
		dir = os.TempDir()
	}

	path := filepath.Join(dir, "ocrflow-"+uuid.New().String()+"."+ext)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

// handleHealth reports engine reachability. It always answers 200: an
// uninvocable engine shows up as "unavailable", not as a failing check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	version := "unavailable"
	if v, err := s.extractor.EngineVersion(); err == nil {
		version = v
	} else {
		slog.Warn("tesseract not reachable", "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"tesseract": version,
	})
}
