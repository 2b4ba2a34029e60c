package host

import (
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
)

var zstdEncoderPool objectPool[*zstd.Encoder]

// Compress encodes a program in the given format.
func Compress(code []byte, compression Compression) []byte {
	switch compression {
	case Snappy:
		return snappy.Encode(nil, code)
	case Zstd:
		enc := zstdEncoderPool.get(func() *zstd.Encoder {
			e, _ := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
			return e
		})
		defer zstdEncoderPool.put(enc)
		return enc.EncodeAll(code, nil)
	default:
		return code
	}
}
