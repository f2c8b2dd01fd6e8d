package core

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

// arrowSchema maps column kinds to nullable arrow fields.
func arrowSchema(t *Table) *arrow.Schema {
	fields := make([]arrow.Field, len(t.Columns))
	for i, col := range t.Columns {
		var dt arrow.DataType
		switch col.Kind {
		case KindInt:
			dt = arrow.PrimitiveTypes.Int64
		case KindFloat:
			dt = arrow.PrimitiveTypes.Float64
		case KindDate:
			dt = arrow.FixedWidthTypes.Date32
		default:
			dt = arrow.BinaryTypes.String
		}
		fields[i] = arrow.Field{Name: col.Name, Type: dt, Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

// ExportParquet writes t as a Snappy-compressed Parquet file with the arrow
// schema stored in its metadata.
func ExportParquet(t *Table) ([]byte, error) {
	if t.Width() == 0 {
		return nil, errors.New("cannot write parquet without columns")
	}

	schema := arrowSchema(t)
	b := array.NewRecordBuilder(memory.NewGoAllocator(), schema)
	defer b.Release()

	for j, col := range t.Columns {
		fb := b.Field(j)
		for i := 0; i < col.Len(); i++ {
			if col.IsNull(i) {
				fb.AppendNull()
				continue
			}
			switch col.Kind {
			case KindInt:
				fb.(*array.Int64Builder).Append(col.Int[i].Int64)
			case KindFloat:
				fb.(*array.Float64Builder).Append(col.Float[i].Float64)
			case KindDate:
				fb.(*array.Date32Builder).Append(arrow.Date32FromTime(col.Date[i].Time))
			default:
				fb.(*array.StringBuilder).Append(col.Text[i].String)
			}
		}
	}

	rec := b.NewRecord()
	defer rec.Release()

	var buf bytes.Buffer
	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	w, err := pqarrow.NewFileWriter(schema, &buf, props, arrowProps)
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet writer: %w", err)
	}
	if err := w.Write(rec); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish parquet file: %w", err)
	}
	return buf.Bytes(), nil
}
