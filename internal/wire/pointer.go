package wire

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Ptr is the offset of a value of type T in the guest linear memory.
//
// Pointers carry no runtime information beyond the offset; the element type
// only determines the size and stride used when accessing memory. Bounds are
// checked when memory is accessed, never when pointers are constructed.
type Ptr[T Value[T]] uint32

func (Ptr[T]) Layout() Layout { return layout32 }

func (Ptr[T]) Decode(b []byte) Ptr[T] {
	check(layout32, b)
	return Ptr[T](binary.LittleEndian.Uint32(b))
}

func (p Ptr[T]) Encode(b []byte) {
	check(layout32, b)
	binary.LittleEndian.PutUint32(b, uint32(p))
}

// Add returns the pointer to the n-th element of an array starting at p.
//
// The method panics if the result does not fit in the 32 bits address space.
func (p Ptr[T]) Add(n uint32) Ptr[T] {
	offset := uint64(p) + uint64(n)*uint64(LayoutOf[T]().ArrayOffset())
	if offset > math.MaxUint32 {
		panic(fmt.Sprintf("wire: pointer arithmetic overflow: %#x + %d elements", uint32(p), n))
	}
	return Ptr[T](offset)
}

// SlicePtr is a pointer to an array of Len values of type T.
type SlicePtr[T Value[T]] struct {
	Ptr Ptr[T]
	Len uint32
}

// MakeSlicePtr constructs a slice pointer from the pointer and length pair
// that WASI functions receive as arguments.
func MakeSlicePtr[T Value[T]](ptr, length uint32) SlicePtr[T] {
	return SlicePtr[T]{Ptr: Ptr[T](ptr), Len: length}
}

// Add returns the slice pointer starting n elements after s.
func (s SlicePtr[T]) Add(n uint32) SlicePtr[T] {
	if n > s.Len {
		panic(fmt.Sprintf("wire: slice offset out of range: %d > %d", n, s.Len))
	}
	return SlicePtr[T]{Ptr: s.Ptr.Add(n), Len: s.Len - n}
}

// Index returns the pointer to the i-th element of s.
func (s SlicePtr[T]) Index(i uint32) Ptr[T] {
	if i >= s.Len {
		panic(fmt.Sprintf("wire: slice index out of range: %d >= %d", i, s.Len))
	}
	return s.Ptr.Add(i)
}

// Span is the number of bytes covered by the slice elements.
func (s SlicePtr[T]) Span() uint64 {
	if s.Len == 0 {
		return 0
	}
	l := LayoutOf[T]()
	return uint64(s.Len-1)*uint64(l.ArrayOffset()) + uint64(l.Size)
}
