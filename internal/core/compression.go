package core

// compression.go unwraps compressed uploads before decoding. Large exports
// are often shipped as .csv.gz or .csv.xz; detection is by magic bytes, not
// by file name.

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"errors"
	"fmt"
	"io"

	"github.com/ulikunitz/xz"
)

// Compression identifies the container format of an upload.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionBzip2
	CompressionXZ
)

// String returns the string representation of Compression.
func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionBzip2:
		return "bzip2"
	case CompressionXZ:
		return "xz"
	default:
		return "none"
	}
}

var (
	gzipMagic  = []byte{0x1f, 0x8b}
	bzip2Magic = []byte{0x42, 0x5a, 0x68} // "BZh", then a block size digit
	xzMagic    = []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}
)

// ErrDecompressedTooLarge is returned when an archive expands past the
// configured limit.
var ErrDecompressedTooLarge = errors.New("decompressed upload exceeds size limit")

// DetectCompression sniffs the leading magic bytes of data.
func DetectCompression(data []byte) Compression {
	switch {
	case bytes.HasPrefix(data, gzipMagic):
		return CompressionGzip
	case bytes.HasPrefix(data, bzip2Magic) && len(data) > 3 && data[3] >= '1' && data[3] <= '9':
		return CompressionBzip2
	case bytes.HasPrefix(data, xzMagic):
		return CompressionXZ
	default:
		return CompressionNone
	}
}

// Decompress returns data unwrapped from its container. Uncompressed input
// is returned as is. maxBytes <= 0 disables the size limit.
func Decompress(data []byte, maxBytes int64) ([]byte, Compression, error) {
	kind := DetectCompression(data)
	if kind == CompressionNone {
		return data, kind, nil
	}

	var reader io.Reader
	switch kind {
	case CompressionGzip:
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, kind, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	case CompressionBzip2:
		reader = bzip2.NewReader(bytes.NewReader(data))
	case CompressionXZ:
		xr, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, kind, fmt.Errorf("failed to create xz reader: %w", err)
		}
		reader = xr
	}

	if maxBytes > 0 {
		// One extra byte tells "exactly at the limit" apart from "over it".
		reader = io.LimitReader(reader, maxBytes+1)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, kind, fmt.Errorf("%s decompression failed: %w", kind, err)
	}
	if maxBytes > 0 && int64(buf.Len()) > maxBytes {
		return nil, kind, ErrDecompressedTooLarge
	}
	return buf.Bytes(), kind, nil
}
