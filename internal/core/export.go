package core

// export.go serializes a table for download. Every format preserves row
// order and column order and is rebuilt from the table on each call.

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Format is an export format name as used in URLs and CLI flags.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatJSON    Format = "json"
	FormatXLSX    Format = "xlsx"
	FormatParquet Format = "parquet"
)

// Formats lists every supported export format in display order.
var Formats = []Format{FormatCSV, FormatJSON, FormatXLSX, FormatParquet}

// ErrUnknownFormat is returned for export format names that are not supported.
var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat resolves a format name, case-insensitively.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// FileName is the download name for exports in this format.
func (f Format) FileName() string {
	switch f {
	case FormatJSON:
		return "dados_filtrados.json"
	default:
		return "filtered_data." + string(f)
	}
}

// ContentType is the MIME type of exports in this format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatJSON:
		return "application/json"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/vnd.apache.parquet"
	}
}

// Label is the text of the download button.
func (f Format) Label() string {
	switch f {
	case FormatCSV:
		return "Download CSV"
	case FormatJSON:
		return "Download JSON"
	case FormatXLSX:
		return "Download Excel"
	default:
		return "Download Parquet"
	}
}

// Export is a serialized table ready to be sent as an attachment.
type Export struct {
	Format      Format
	FileName    string
	ContentType string
	Rows        int
	Data        []byte
}

// ExportTable serializes t in the given format.
func ExportTable(t *Table, format Format) (*Export, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatCSV:
		data, err = ExportCSV(t)
	case FormatJSON:
		data, err = ExportJSON(t)
	case FormatXLSX:
		data, err = ExportXLSX(t)
	case FormatParquet:
		data, err = ExportParquet(t)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", format, err)
	}
	return &Export{
		Format:      format,
		FileName:    format.FileName(),
		ContentType: format.ContentType(),
		Rows:        t.Len(),
		Data:        data,
	}, nil
}

// ExportCSV writes t as UTF-8 comma-separated text with a header row and no
// index column. Null cells are empty fields.
func ExportCSV(t *Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Names()); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for i := 0; i < t.Len(); i++ {
		if err := w.Write(t.Row(i)); err != nil {
			return nil, fmt.Errorf("failed to write CSV row %d: %w", i+1, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportJSON writes t as an indented array of row objects. Keys follow
// column order, nulls are null and dates are YYYY-MM-DD strings.
func ExportJSON(t *Table) ([]byte, error) {
	records := make([]jsonRecord, t.Len())
	for i := range records {
		records[i] = jsonRecord{table: t, row: i}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return buf.Bytes(), nil
}

// jsonRecord marshals one row as an object with ordered keys.
type jsonRecord struct {
	table *Table
	row   int
}

func (r jsonRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for j, col := range r.table.Columns {
		if j > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalPlain(col.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		v := col.Value(r.row)
		if ts, ok := v.(time.Time); ok {
			v = ts.Format(DateLayout)
		}
		val, err := marshalPlain(v)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col.Name, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalPlain is json.Marshal without HTML escaping.
func marshalPlain(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
