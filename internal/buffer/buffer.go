// Package buffer pools the host buffers that stage data moved between the
// guest memory and host resources.
package buffer

import "sync"

const (
	// DefaultSize is the granularity of buffer capacities.
	DefaultSize = 4096
	// MaxPooledSize is the largest capacity retained by a pool. Larger
	// buffers are left to the garbage collector.
	MaxPooledSize = 1024 * 1024
)

type Buffer struct{ Data []byte }

func (buf *Buffer) Size() int64 {
	return int64(len(buf.Data))
}

// Pool is a pool of buffers. The zero value is ready to use.
type Pool struct{ pool sync.Pool }

// Get returns a buffer of length size. Its contents are unspecified.
func (p *Pool) Get(size int64) *Buffer {
	if size > MaxPooledSize {
		return New(size)
	}
	if b, _ := p.pool.Get().(*Buffer); b != nil {
		if size <= int64(cap(b.Data)) {
			b.Data = b.Data[:size]
			return b
		}
		p.pool.Put(b)
	}
	return New(size)
}

// Put returns b to the pool. Buffers larger than MaxPooledSize are dropped.
func (p *Pool) Put(b *Buffer) {
	if b != nil && cap(b.Data) <= MaxPooledSize {
		p.pool.Put(b)
	}
}

// New allocates a buffer of length size with a capacity rounded up to a
// multiple of DefaultSize.
func New(size int64) *Buffer {
	return &Buffer{Data: make([]byte, size, Align(size, DefaultSize))}
}

func Align(size, to int64) int64 {
	return ((size + (to - 1)) / to) * to
}
