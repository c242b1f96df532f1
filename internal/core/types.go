package core

import (
	"context"
	"time"
)

// ProcessorRecord is one row of the processors table, one per SKU.
// Every field except ID and Product is nullable because the source
// spreadsheets use "N/A" for unknown values.
type ProcessorRecord struct {
	ID                 int64    `json:"id"`
	Product            string   `json:"product"`
	Status             *string  `json:"status"`
	ReleaseDate        *string  `json:"release_date"`
	CodeName           *string  `json:"code_name"`
	Cores              *int32   `json:"cores"`
	Threads            *int32   `json:"threads"`
	Lithography        *float64 `json:"lithography"`
	MaxTurboFreq       *float64 `json:"max_turbo_freq"`
	BaseFreq           *float64 `json:"base_freq"`
	TDP                *int32   `json:"tdp"`
	Cache              *float64 `json:"cache"`
	CacheInfo          *string  `json:"cache_info"`
	MaxMemorySize      *int32   `json:"max_memory_size"`
	MemoryTypes        *string  `json:"memory_types"`
	MaxMemorySpeed     *int32   `json:"max_memory_speed"`
	IntegratedGraphics *string  `json:"integrated_graphics"`
}

// Store is the persistence layer for processor records.
// Implementations translate driver errors into ErrNotFound,
// *ValidationError and *TransientError.
type Store interface {
	// Create assigns an id, persists rec and returns the stored record.
	Create(ctx context.Context, rec ProcessorRecord) (ProcessorRecord, error)

	// BulkCreate persists recs in a single transaction. Either every
	// record is stored or none is.
	BulkCreate(ctx context.Context, recs []ProcessorRecord) (int64, error)

	// List returns records in insertion order, skipping offset rows.
	List(ctx context.Context, offset, limit int) ([]ProcessorRecord, error)

	// GetByID returns ErrNotFound when no record has the id.
	GetByID(ctx context.Context, id int64) (ProcessorRecord, error)

	// GetByName matches product exactly and returns the earliest insert.
	GetByName(ctx context.Context, product string) (ProcessorRecord, error)

	Count(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
	EnsureSchema(ctx context.Context) error
	Close() error
}

// FileReport describes the outcome of importing one CSV source.
type FileReport struct {
	ImportID string        `json:"import_id"`
	FileName string        `json:"file_name"`
	Rows     int           `json:"rows"`
	Inserted int64         `json:"inserted"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// BatchReport aggregates the per-file reports of a directory import.
type BatchReport struct {
	Files    []FileReport `json:"files"`
	Inserted int64        `json:"inserted"`
	Failed   int          `json:"failed"`
}
