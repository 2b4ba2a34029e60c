package host

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
)

// Compression is the compression format of a guest program file.
type Compression int

const (
	Uncompressed Compression = iota
	Snappy
	Zstd
)

func (c Compression) String() string {
	switch c {
	case Uncompressed:
		return "uncompressed"
	case Snappy:
		return "snappy"
	case Zstd:
		return "zstd"
	default:
		return fmt.Sprintf("Compression(%d)", int(c))
	}
}

var (
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
	wasmMagic = []byte{0x00, 'a', 's', 'm'}
)

// DetectCompression determines the compression format of a program from its
// first bytes, or from the file extension for formats that carry no magic
// number.
func DetectCompression(name string, code []byte) Compression {
	switch {
	case bytes.HasPrefix(code, wasmMagic):
		return Uncompressed
	case bytes.HasPrefix(code, zstdMagic):
		return Zstd
	case filepath.Ext(name) == ".sz":
		return Snappy
	default:
		return Uncompressed
	}
}

var zstdDecoderPool objectPool[*zstd.Decoder]

type objectPool[T any] struct {
	pool sync.Pool
}

func (p *objectPool[T]) get(newObject func() T) T {
	v, ok := p.pool.Get().(T)
	if ok {
		return v
	}
	return newObject()
}

func (p *objectPool[T]) put(obj T) {
	p.pool.Put(obj)
}

// Decompress decodes a program compressed in the given format.
func Decompress(code []byte, compression Compression) ([]byte, error) {
	switch compression {
	case Uncompressed:
		return code, nil
	case Snappy:
		return snappy.Decode(nil, code)
	case Zstd:
		dec := zstdDecoderPool.get(func() *zstd.Decoder {
			d, _ := zstd.NewReader(nil,
				zstd.WithDecoderConcurrency(1),
			)
			return d
		})
		defer zstdDecoderPool.put(dec)
		return dec.DecodeAll(code, nil)
	default:
		return nil, fmt.Errorf("unknown compression format: %s", compression)
	}
}
