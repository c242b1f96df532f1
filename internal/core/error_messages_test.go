package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "not found",
			err:         ErrNotFound,
			wantCode:    "PROC001",
			wantMessage: "Processor not found",
		},
		{
			name:        "wrapped not found",
			err:         fmt.Errorf("get by name: %w", ErrNotFound),
			wantCode:    "PROC001",
			wantMessage: "Processor not found",
		},
		{
			name:     "invalid record",
			err:      &ValidationError{Field: "product", Line: 4, Reason: "longer than 255 characters"},
			wantCode: "VAL001",
		},
		{
			name:     "missing product column beats generic validation",
			err:      &ValidationError{Field: "Product", Line: 1, Reason: "missing required column"},
			wantCode: "VAL002",
		},
		{
			name:     "file too large",
			err:      &ValidationError{Reason: "file too large: a.csv exceeds 100MB limit"},
			wantCode: "FILE001",
		},
		{
			name:     "invalid csv",
			err:      &ValidationError{Line: 3, Reason: "invalid csv: extraneous \" in field"},
			wantCode: "FILE002",
		},
		{
			name:     "empty file",
			err:      &ValidationError{Reason: "empty file"},
			wantCode: "FILE003",
		},
		{
			name:     "upload slots exhausted",
			err:      &TransientError{Op: "upload", Err: ErrTooManyUploads},
			wantCode: "FILE005",
		},
		{
			name:     "transient store error",
			err:      &TransientError{Op: "copy", Err: errors.New("connection reset by peer")},
			wantCode: "DB001",
		},
		{
			name:     "deadline beats transient",
			err:      &TransientError{Op: "copy", Err: context.DeadlineExceeded},
			wantCode: "DB002",
		},
		{
			name:     "rate limited",
			err:      errors.New("rate limit exceeded"),
			wantCode: "RATE001",
		},
		{
			name:     "case insensitive",
			err:      errors.New("Missing API Key"),
			wantCode: "AUTH001",
		},
		{
			name:        "unknown error",
			err:         errors.New("something odd"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			assert.Equal(t, tt.wantCode, got.Code)
			if tt.wantMessage != "" || tt.err == nil {
				assert.Equal(t, tt.wantMessage, got.Message)
			}
			if tt.err != nil {
				assert.NotEmpty(t, got.Action)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	assert.Equal(t, "", FormatUserError(nil))
	assert.Equal(t,
		"Processor not found (Code: PROC001). Check the processor name or id",
		FormatUserError(ErrNotFound))
}

func TestTransient(t *testing.T) {
	assert.Nil(t, Transient("op", nil))
	assert.True(t, IsTransient(Transient("op", context.DeadlineExceeded)))

	plain := errors.New("syntax error")
	assert.Same(t, plain, Transient("op", plain))

	already := &TransientError{Op: "a", Err: plain}
	assert.Same(t, already, Transient("b", already))
}

func TestValidationErrorMessage(t *testing.T) {
	assert.Equal(t, "validation error: line 3: product: longer than 255 characters",
		(&ValidationError{Field: "product", Line: 3, Reason: "longer than 255 characters"}).Error())
	assert.Equal(t, "validation error: line 3: bad", (&ValidationError{Line: 3, Reason: "bad"}).Error())
	assert.Equal(t, "validation error: tdp: bad", (&ValidationError{Field: "tdp", Reason: "bad"}).Error())
	assert.Equal(t, "validation error: bad", (&ValidationError{Reason: "bad"}).Error())
}
