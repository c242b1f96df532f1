package core

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/JonMunkholm/procspec/internal/logging"
	"github.com/google/uuid"
)

// DefaultMaxFileSize is the largest CSV file accepted when no limit is configured (100MB).
const DefaultMaxFileSize int64 = 100 * 1024 * 1024

// ContextCheckInterval is how often (in rows) parsing checks for cancellation.
var ContextCheckInterval = 100

// Ingester drives CSV sources through normalization into a Store.
type Ingester struct {
	store       Store
	maxFileSize int64
}

// NewIngester creates an Ingester writing to store. A non-positive
// maxFileSize selects DefaultMaxFileSize.
func NewIngester(store Store, maxFileSize int64) *Ingester {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &Ingester{store: store, maxFileSize: maxFileSize}
}

// IngestReader parses one CSV document and stores all of its rows in a
// single batch. The returned report is populated even on failure.
func (in *Ingester) IngestReader(ctx context.Context, name string, r io.Reader) (FileReport, error) {
	start := time.Now()
	report := FileReport{ImportID: uuid.NewString(), FileName: name}
	logger := logging.WithFields(ctx, "import_id", report.ImportID, "file", name)

	recs, err := in.parse(ctx, r, report.ImportID)
	report.Rows = len(recs)
	if err == nil && len(recs) > 0 {
		report.Inserted, err = in.store.BulkCreate(ctx, recs)
	}

	report.Duration = time.Since(start)
	importFilesTotal.WithLabelValues(outcomeLabel(err)).Inc()
	importDuration.Observe(report.Duration.Seconds())

	if err != nil {
		report.Error = err.Error()
		report.Inserted = 0
		logger.Error("import failed", "rows", report.Rows, "error", err)
		return report, err
	}

	importRowsTotal.Add(float64(report.Inserted))
	logger.Info("import completed",
		"rows", report.Rows,
		"inserted", report.Inserted,
		"duration_ms", report.Duration.Milliseconds(),
	)
	return report, nil
}

// parse reads the header once and normalizes every non-empty data row.
func (in *Ingester) parse(ctx context.Context, r io.Reader, importID string) ([]ProcessorRecord, error) {
	cr := NewCSVReader(r)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &ValidationError{Reason: "empty file"}
	}
	if err != nil {
		return nil, csvError(err)
	}

	idx, unknown := MakeHeaderIndex(header)
	if err := idx.RequireProduct(); err != nil {
		return nil, err
	}
	if len(unknown) > 0 {
		logging.FromContext(ctx).Debug("ignoring unknown columns",
			"import_id", importID,
			"columns", strings.Join(unknown, ", "),
		)
	}

	var recs []ProcessorRecord
	for i := 0; ; i++ {
		if i%ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return recs, fmt.Errorf("import cancelled: %w", err)
			}
		}

		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return recs, csvError(err)
		}
		if isEmptyRow(row) {
			continue
		}

		rec := BuildRecord(row, idx)
		if err := rec.Validate(); err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				ve.Line, _ = cr.FieldPos(0)
			}
			return recs, err
		}
		recs = append(recs, rec)
	}

	return recs, nil
}

// csvError converts a reader failure into a ValidationError with its line.
func csvError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &ValidationError{Line: pe.Line, Reason: "invalid csv: " + pe.Err.Error()}
	}
	return fmt.Errorf("read csv: %w", err)
}

// IngestFile imports a single CSV file. Any error aborts the file and
// leaves the store unchanged.
func (in *Ingester) IngestFile(ctx context.Context, path string) (FileReport, error) {
	name := filepath.Base(path)

	info, err := os.Stat(path)
	if err != nil {
		return FileReport{FileName: name, Error: err.Error()}, fmt.Errorf("stat %s: %w", name, err)
	}
	if info.Size() > in.maxFileSize {
		err := &ValidationError{Reason: fmt.Sprintf("file too large: %s exceeds %dMB limit", name, in.maxFileSize/(1024*1024))}
		return FileReport{FileName: name, Error: err.Error()}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return FileReport{FileName: name, Error: err.Error()}, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	return in.IngestReader(ctx, name, f)
}

// IngestDir imports every *.csv file in dir in name order. A failing file
// is logged and counted, and the remaining files are still imported. Only
// an unreadable directory or cancellation stops the batch early.
func (in *Ingester) IngestDir(ctx context.Context, dir string) (BatchReport, error) {
	var batch BatchReport

	entries, err := os.ReadDir(dir)
	if err != nil {
		return batch, fmt.Errorf("read directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}

	if len(files) == 0 {
		logging.FromContext(ctx).Warn("no csv files found", "dir", dir)
		return batch, nil
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return batch, fmt.Errorf("import cancelled: %w", err)
		}

		report, err := in.IngestFile(ctx, path)
		batch.Files = append(batch.Files, report)
		if err != nil {
			batch.Failed++
			continue
		}
		batch.Inserted += report.Inserted
	}

	logging.FromContext(ctx).Info("batch import finished",
		"dir", dir,
		"files", len(batch.Files),
		"failed", batch.Failed,
		"inserted", batch.Inserted,
	)
	return batch, nil
}

// IngestPath imports path as a directory batch or as a single file.
func (in *Ingester) IngestPath(ctx context.Context, path string) (BatchReport, error) {
	info, err := os.Stat(path)
	if err != nil {
		return BatchReport{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return in.IngestDir(ctx, path)
	}

	report, err := in.IngestFile(ctx, path)
	batch := BatchReport{Files: []FileReport{report}, Inserted: report.Inserted}
	if err != nil {
		batch.Failed = 1
	}
	return batch, err
}
