package cache

import (
	"github.com/pierrec/lz4/v4"
)

// CompressData lz4-compresses a serialized cache value. Incompressible
// payloads are stored raw; DecompressData detects that case.
func CompressData(data []byte) ([]byte, error) {
	buf := make([]byte, lz4.CompressBlockBound(len(data)))
	var compressor lz4.Compressor
	n, err := compressor.CompressBlock(data, buf)
	if err != nil {
		return nil, err
	}
	if n == 0 || n >= len(data) {
		return data, nil
	}
	return buf[:n], nil
}

// DecompressData reverses CompressData. originalLen is a sizing hint for
// the output buffer. A payload that fails block decompression was stored
// raw and is returned unchanged.
func DecompressData(data []byte, originalLen int) ([]byte, error) {
	size := originalLen * 8
	if size < 4096 {
		size = 4096
	}
	out := make([]byte, size)
	n, err := lz4.UncompressBlock(data, out)
	if err != nil {
		return data, nil
	}
	return out[:n], nil
}
