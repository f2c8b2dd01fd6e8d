package core

// loader.go turns an uploaded byte stream into a Table.
//
// Load pipeline:
//  1. Unwrap gzip/bzip2/xz containers
//  2. Strip a UTF-8 BOM
//  3. Decode with the first encoding that accepts the bytes
//  4. Parse comma-delimited records (header row required)
//  5. Normalise labels and infer column kinds
//
// A decode failure moves on to the next encoding. A structural CSV failure
// stops immediately, since a different charset cannot fix broken quoting.

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrEmptyFile is returned for uploads with no bytes or no header row.
var ErrEmptyFile = errors.New("file is empty")

// ErrEncoding is wrapped by every encoding failure.
var ErrEncoding = errors.New("could not decode file with any supported encoding")

// LoadErrorKind classifies load failures for the presentation layer.
type LoadErrorKind string

const (
	KindEncoding  LoadErrorKind = "encoding"
	KindMalformed LoadErrorKind = "malformed"
)

// LoadError is a failure that must stop the pipeline for the current upload.
type LoadError struct {
	Kind LoadErrorKind
	Err  error
}

func (e *LoadError) Error() string {
	switch e.Kind {
	case KindEncoding:
		return fmt.Sprintf("encoding error: %v", e.Err)
	default:
		return fmt.Sprintf("invalid csv: %v", e.Err)
	}
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Loader decodes uploads. The zero value is not usable; call NewLoader.
type Loader struct {
	// Encodings are tried in order.
	Encodings []Encoding

	// MaxBytes caps the decompressed size of an upload. Zero disables it.
	MaxBytes int64
}

// NewLoader returns a loader using DefaultEncodings.
func NewLoader(maxBytes int64) *Loader {
	return &Loader{Encodings: DefaultEncodings, MaxBytes: maxBytes}
}

// Load decodes data with the default loader and no size cap.
func Load(data []byte) (*Table, error) {
	return NewLoader(0).Load(data)
}

// Load decodes data into a Table. The table's Encoding records which
// encoding succeeded.
func (l *Loader) Load(data []byte) (*Table, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	raw, _, err := Decompress(data, l.MaxBytes)
	if err != nil {
		if errors.Is(err, ErrDecompressedTooLarge) {
			return nil, err
		}
		return nil, &LoadError{Kind: KindMalformed, Err: err}
	}
	raw = stripBOM(raw)
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ErrEmptyFile
	}

	var failures []string
	for _, enc := range l.Encodings {
		text, err := enc.Decode(raw)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", enc.Name, err))
			continue
		}

		t, err := parseTable(text)
		if err != nil {
			return nil, err
		}
		t.Encoding = enc.Name
		return t, nil
	}

	return nil, &LoadError{
		Kind: KindEncoding,
		Err:  fmt.Errorf("%w (%s)", ErrEncoding, strings.Join(failures, "; ")),
	}
}

// parseTable reads comma-delimited UTF-8 text whose first record is the
// header.
func parseTable(text []byte) (*Table, error) {
	if line, open := unclosedQuote(text); open {
		return nil, &LoadError{
			Kind: KindMalformed,
			Err:  fmt.Errorf("quoted field starting on line %d is never closed", line),
		}
	}

	r := csv.NewReader(bytes.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, &LoadError{Kind: KindMalformed, Err: err}
	}
	names := normalizeHeader(header)

	cells := make([][]string, len(names))
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &LoadError{Kind: KindMalformed, Err: err}
		}
		if len(record) > len(names) {
			line, _ := r.FieldPos(0)
			return nil, &LoadError{
				Kind: KindMalformed,
				Err:  fmt.Errorf("line %d has %d fields, header has %d", line, len(record), len(names)),
			}
		}
		for i := range names {
			if i < len(record) {
				cells[i] = append(cells[i], record[i])
			} else {
				cells[i] = append(cells[i], "")
			}
		}
	}

	cols := make([]*Column, len(names))
	for i, name := range names {
		cols[i] = inferColumn(name, cells[i])
	}
	t, err := NewTable(cols)
	if err != nil {
		return nil, &LoadError{Kind: KindMalformed, Err: err}
	}
	return t, nil
}

// normalizeHeader trims labels, names blank ones by position and suffixes
// repeats so every column name is unique.
func normalizeHeader(header []string) []string {
	names := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		unique := name
		for n := 1; seen[unique]; n++ {
			unique = name + "." + strconv.Itoa(n)
		}
		seen[unique] = true
		names[i] = unique
	}
	return names
}

// unclosedQuote reports whether text ends inside a quoted field, following
// the rules csv.Reader applies with LazyQuotes: a field is quoted only when
// its first byte is a quote, and a quote inside it closes the field only
// when followed by a comma, a line break or the end of input. A lazy reader
// folds everything after such an open quote into one cell. start is the line
// on which the open field begins.
func unclosedQuote(text []byte) (start int, open bool) {
	line := 1
	quoted, fieldStart := false, true
	for i := 0; i < len(text); i++ {
		c := text[i]
		if !quoted {
			switch {
			case c == ',':
				fieldStart = true
			case c == '\n':
				line++
				fieldStart = true
			case c == '"' && fieldStart:
				quoted, fieldStart = true, false
				start = line
			default:
				fieldStart = false
			}
			continue
		}

		switch c {
		case '\n':
			line++
		case '"':
			rest := text[i+1:]
			switch {
			case len(rest) == 0:
				quoted = false
			case rest[0] == '"':
				i++
			case rest[0] == ',', rest[0] == '\n', bytes.HasPrefix(rest, []byte("\r\n")):
				quoted = false
			}
		}
	}
	return start, quoted
}
