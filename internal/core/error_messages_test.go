package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
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
			name:        "request body too large",
			err:         errors.New("http: request body too large"),
			wantCode:    "FILE001",
			wantMessage: "File exceeds the maximum upload size",
		},
		{
			name:        "decompressed size limit",
			err:         ErrDecompressedTooLarge,
			wantCode:    "FILE001",
			wantMessage: "File exceeds the maximum upload size",
		},
		{
			name:        "malformed csv",
			err:         &LoadError{Kind: KindMalformed, Err: errors.New("line 3 has 4 fields, header has 3")},
			wantCode:    "FILE002",
			wantMessage: "Error loading file",
		},
		{
			name:        "damaged gzip wins over invalid csv",
			err:         &LoadError{Kind: KindMalformed, Err: errors.New("failed to create gzip reader: gzip: invalid header")},
			wantCode:    "FILE006",
			wantMessage: "The compressed upload is damaged",
		},
		{
			name:        "encoding failure",
			err:         &LoadError{Kind: KindEncoding, Err: ErrEncoding},
			wantCode:    "FILE003",
			wantMessage: "Error reading file. Check the encoding.",
		},
		{
			name:        "no file",
			err:         fmt.Errorf("%w: missing multipart boundary", ErrNoFile),
			wantCode:    "FILE004",
			wantMessage: "No file was selected",
		},
		{
			name:        "empty file",
			err:         ErrEmptyFile,
			wantCode:    "FILE005",
			wantMessage: "The uploaded file is empty",
		},
		{
			name:        "dataset expired",
			err:         ErrDatasetNotFound,
			wantCode:    "DS001",
			wantMessage: "The loaded file is no longer available",
		},
		{
			name:        "unknown export format",
			err:         fmt.Errorf("%w: %q", ErrUnknownFormat, "pdf"),
			wantCode:    "DS002",
			wantMessage: "The requested export format is not supported",
		},
		{
			name:        "too many loads",
			err:         ErrTooManyLoads,
			wantCode:    "UPL002",
			wantMessage: "Too many uploads in progress",
		},
		{
			name:        "cancelled",
			err:         context.Canceled,
			wantCode:    "UPL004",
			wantMessage: "Request was cancelled",
		},
		{
			name:        "timeout",
			err:         fmt.Errorf("load: %w", context.DeadlineExceeded),
			wantCode:    "UPL005",
			wantMessage: "Request timed out",
		},
		{
			name:        "rate limit maps correctly",
			err:         errors.New("rate limit exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("FILE IS EMPTY"),
			wantCode:    "FILE005",
			wantMessage: "The uploaded file is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestMapError_LoadDetail(t *testing.T) {
	err := fmt.Errorf("upload users.csv: %w", &LoadError{
		Kind: KindMalformed,
		Err:  errors.New("line 3 has 4 fields, header has 3"),
	})

	got := MapError(err)
	if got.Detail != "line 3 has 4 fields, header has 3" {
		t.Errorf("Detail = %q, want parser message", got.Detail)
	}

	if d := MapError(ErrEmptyFile).Detail; d != "" {
		t.Errorf("Detail for non-load error = %q, want empty", d)
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(ErrDatasetNotFound)
	expected := "The loaded file is no longer available (Code: DS001). Upload the file again"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}

	result = FormatUserError(&LoadError{Kind: KindMalformed, Err: errors.New("bad quote")})
	expected = "Error loading file: bad quote (Code: FILE002). Check quoting and that no row has more fields than the header"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}

	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error is not user facing",
			err:  nil,
			want: false,
		},
		{
			name: "known error is user facing",
			err:  ErrEmptyFile,
			want: true,
		},
		{
			name: "unknown error is not user facing",
			err:  errors.New("random internal error xyz"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsUserFacing(tt.err)
			if got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}
