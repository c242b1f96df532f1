package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/procspec/internal/core"
	"github.com/JonMunkholm/procspec/internal/logging"
	"github.com/go-chi/render"
)

// multipartMemory is the part of a multipart upload held in memory; the
// rest spills to a temporary file.
const multipartMemory = 32 << 20

var errNoFile = &core.ValidationError{Field: "file", Reason: "no file provided"}

// UploadResponse is the receipt returned by POST /upload-csv/.
type UploadResponse struct {
	Message  string `json:"message"`
	ImportID string `json:"import_id"`
	FileName string `json:"file_name"`
	Rows     int    `json:"rows"`
	Inserted int64  `json:"inserted"`
}

// handleUploadCSV imports a CSV sent either as the raw request body or as
// multipart form field "file". The whole file is stored in one
// transaction or not at all.
func (s *Server) handleUploadCSV(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Upload.Timeout)
	defer cancel()

	if err := s.uploads.Acquire(ctx); err != nil {
		s.respondError(w, r, &core.TransientError{Op: "upload", Err: err})
		return
	}
	defer s.uploads.Release()

	name, body, err := uploadSource(r)
	if err != nil {
		s.respondError(w, r, bodyTooLarge(err, maxSize))
		return
	}
	defer body.Close()

	report, err := s.ingester.IngestReader(ctx, name, body)
	if err != nil {
		s.respondError(w, r, bodyTooLarge(err, maxSize))
		return
	}

	logging.FromContext(ctx).Info("csv uploaded",
		"import_id", report.ImportID,
		"file", report.FileName,
		"inserted", report.Inserted,
	)

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, UploadResponse{
		Message:  "CSV data uploaded successfully",
		ImportID: report.ImportID,
		FileName: report.FileName,
		Rows:     report.Rows,
		Inserted: report.Inserted,
	})
}

// uploadSource returns the file name and CSV stream of the request.
func uploadSource(r *http.Request) (string, io.ReadCloser, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return "", nil, err
		}
		file, header, err := r.FormFile("file")
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil, errNoFile
		}
		if err != nil {
			return "", nil, err
		}
		return filepath.Base(header.Filename), file, nil
	}

	if r.Body == nil || r.ContentLength == 0 {
		return "", nil, errNoFile
	}

	name := r.URL.Query().Get("filename")
	if name == "" {
		name = "upload.csv"
	}
	return filepath.Base(name), r.Body, nil
}

// bodyTooLarge rewrites a body size violation so it maps to 413 and the
// "file too large" user message.
func bodyTooLarge(err error, limit int64) error {
	var mbe *http.MaxBytesError
	if !errors.As(err, &mbe) {
		if !strings.Contains(err.Error(), "request body too large") {
			return err
		}
		mbe = &http.MaxBytesError{Limit: limit}
	}
	return fmt.Errorf("file too large: exceeds %dMB limit: %w", limit/(1024*1024), mbe)
}
