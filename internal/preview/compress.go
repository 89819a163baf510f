package preview

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/snappy"
	"github.com/pierrec/lz4/v4"

	"github.com/edgecomet/htmlcut/pkg/types"
)

// ErrDecompression is returned when a cached value cannot be decoded.
var ErrDecompression = errors.New("decompression failed")

// Cached values start with one byte naming the algorithm of the payload.
const (
	tagNone   byte = 0
	tagSnappy byte = 1
	tagLZ4    byte = 2
)

// Compress encodes content with algorithm and prefixes the algorithm tag.
// Content shorter than minSize is stored uncompressed.
func Compress(content []byte, algorithm string, minSize int) ([]byte, error) {
	if len(content) < minSize {
		algorithm = types.CompressionNone
	}

	switch algorithm {
	case types.CompressionSnappy:
		return append([]byte{tagSnappy}, snappy.Encode(nil, content)...), nil

	case types.CompressionLZ4:
		var buf bytes.Buffer
		buf.WriteByte(tagLZ4)
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(content); err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("lz4 compression failed: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("lz4 compression close failed: %w", err)
		}
		return buf.Bytes(), nil

	default:
		return append([]byte{tagNone}, content...), nil
	}
}

// Decompress reverses Compress.
func Decompress(value []byte) ([]byte, error) {
	if len(value) == 0 {
		return nil, fmt.Errorf("%w: empty value", ErrDecompression)
	}

	payload := value[1:]
	switch value[0] {
	case tagNone:
		return payload, nil

	case tagSnappy:
		out, err := snappy.Decode(nil, payload)
		if err != nil {
			return nil, fmt.Errorf("%w: snappy: %w", ErrDecompression, err)
		}
		return out, nil

	case tagLZ4:
		out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(payload)))
		if err != nil {
			return nil, fmt.Errorf("%w: lz4: %w", ErrDecompression, err)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: unknown algorithm tag %d", ErrDecompression, value[0])
	}
}

// AlgorithmName names the algorithm a stored value was written with.
func AlgorithmName(value []byte) string {
	if len(value) == 0 {
		return ""
	}
	switch value[0] {
	case tagSnappy:
		return types.CompressionSnappy
	case tagLZ4:
		return types.CompressionLZ4
	case tagNone:
		return types.CompressionNone
	}
	return ""
}
