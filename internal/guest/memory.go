// Package guest provides access to the linear memory of a WebAssembly guest.
//
// All reads and writes of guest memory performed by the host functions go
// through the typed views of this package. Accessing memory out of bounds is
// a fault of the guest program which cannot be recovered from: the functions
// panic with a *Fault value, which aborts the host function call and the
// execution of the guest.
package guest

import (
	"fmt"

	"github.com/stealthrocket/wasihost/internal/wire"
	"github.com/tetratelabs/wazero/api"
)

// Fault is the value that memory accesses panic with when the guest passes
// pointers or lengths outside of its linear memory.
type Fault struct {
	Offset uint64
	Length uint64
	Size   uint32
}

func (f *Fault) Error() string {
	return fmt.Sprintf("guest memory access out of bounds: [%d:%d] in %d bytes", f.Offset, f.Offset+f.Length, f.Size)
}

// Memory is a view of the guest linear memory (index 0, as assumed by WASI).
type Memory struct {
	mem api.Memory
}

// New wraps mem.
func New(mem api.Memory) Memory {
	return Memory{mem: mem}
}

// Size returns the current size of the memory in bytes.
func (m Memory) Size() uint32 {
	return m.mem.Size()
}

func (m Memory) view(offset, length uint64) []byte {
	size := m.mem.Size()
	if offset+length > uint64(size) {
		panic(&Fault{Offset: offset, Length: length, Size: size})
	}
	if length == 0 {
		return nil
	}
	b, ok := m.mem.Read(uint32(offset), uint32(length))
	if !ok {
		panic(&Fault{Offset: offset, Length: length, Size: size})
	}
	return b
}

// Bytes returns the n bytes of memory starting at ptr.
//
// The returned slice aliases the guest memory and must not be retained after
// the host function returns.
func (m Memory) Bytes(ptr wire.Ptr[wire.U8], n uint32) []byte {
	return m.view(uint64(ptr), uint64(n))
}

// Load reads the value that p points to.
func Load[T wire.Value[T]](m Memory, p wire.Ptr[T]) T {
	var v T
	return v.Decode(m.view(uint64(p), uint64(v.Layout().Size)))
}

// Store writes v at the location that p points to.
func Store[T wire.Value[T]](m Memory, p wire.Ptr[T], v T) {
	v.Encode(m.view(uint64(p), uint64(v.Layout().Size)))
}

// Slice is a view of an array of values of type T in guest memory.
type Slice[T wire.Value[T]] struct {
	mem Memory
	ptr wire.SlicePtr[T]
}

// SliceOf returns the view of the array that s points to.
//
// The bounds are not verified until elements are accessed.
func SliceOf[T wire.Value[T]](m Memory, s wire.SlicePtr[T]) Slice[T] {
	return Slice[T]{mem: m, ptr: s}
}

// Len returns the number of elements of s.
func (s Slice[T]) Len() int {
	return int(s.ptr.Len)
}

func (s Slice[T]) at(i int) []byte {
	if i < 0 || uint64(i) >= uint64(s.ptr.Len) {
		panic(fmt.Sprintf("guest: slice index out of range [%d] with length %d", i, s.ptr.Len))
	}
	l := wire.LayoutOf[T]()
	offset := uint64(s.ptr.Ptr) + uint64(i)*uint64(l.ArrayOffset())
	return s.mem.view(offset, uint64(l.Size))
}

// Load reads the value at index i.
func (s Slice[T]) Load(i int) T {
	var v T
	return v.Decode(s.at(i))
}

// Store writes v at index i.
func (s Slice[T]) Store(i int, v T) {
	v.Encode(s.at(i))
}
