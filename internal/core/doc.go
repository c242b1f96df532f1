// Package core provides the business logic for the processor spec catalog.
//
// This package is independent of any transport or database driver. The
// HTTP server, the batch import CLI and the tests all use it unchanged.
//
// # Schema
//
// The processors table has a fixed set of columns declared in
// [ProcessorFields]. Each entry binds the human-readable spreadsheet label
// (for example "Max. Turbo Freq.(GHz)") to its column and target type. CSV
// headers are resolved through this table, never by inspecting the data.
//
// # Normalization
//
// [Normalize] converts a raw cell into a typed [Value]:
//
//   - "", "N/A", "NA" and "NULL" (any case) are null for every type
//   - numeric cells lose one unit suffix (GHz, MHz, nm, MB, GB, W)
//   - integers are parsed as floats and truncated, so "45.0" is 45
//   - unreadable numbers are null; a single bad cell never rejects a row
//
// # Ingestion
//
// An [Ingester] reads a CSV source, normalizes every row with
// [BuildRecord] and hands the whole file to [Store.BulkCreate] as one
// transaction. Directory imports continue past a failing file; single
// file imports stop at the first error.
//
// # Error Handling
//
// Stores report lookups that match nothing as [ErrNotFound], unstorable
// records as [*ValidationError], and connectivity problems as
// [*TransientError]. [MapError] turns any of them into a user message with
// a support code.
package core
