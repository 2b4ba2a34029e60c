// Package wire implements the memory representation of the types exchanged
// between a WebAssembly guest and the WASI host functions.
//
// Values are encoded in little-endian byte order, and structures follow the
// natural alignment rules of the WASI ABI. Each wire type reports a Layout
// which gives its size and alignment; the distance between elements of an
// array of values is the size rounded up to the alignment.
//
// The Decode and Encode methods expect a byte slice whose length matches the
// size of the value exactly, and panic otherwise: a mismatch indicates a bug
// in the host, not in the guest.
package wire

import (
	"encoding/binary"
	"fmt"
)

// Layout is the size and alignment of a wire value.
type Layout struct {
	Size  uint32
	Align uint32
}

// ArrayOffset is the stride between consecutive values in an array.
func (l Layout) ArrayOffset() uint32 {
	return alignUp(l.Size, l.Align)
}

func alignUp(n, align uint32) uint32 {
	return (n + align - 1) &^ (align - 1)
}

// Value is the interface implemented by wire types.
//
// Layout and Decode do not depend on the receiver and are usually called on
// the zero value of T.
type Value[T any] interface {
	Layout() Layout
	Decode(b []byte) T
	Encode(b []byte)
}

// LayoutOf returns the layout of wire values of type T.
func LayoutOf[T Value[T]]() Layout {
	var v T
	return v.Layout()
}

// Decode decodes a value of type T from b.
func Decode[T Value[T]](b []byte) T {
	var v T
	return v.Decode(b)
}

func check(l Layout, b []byte) {
	if uint64(len(b)) != uint64(l.Size) {
		panic(fmt.Sprintf("wire: buffer of length %d does not match value size %d", len(b), l.Size))
	}
}

var (
	layout8  = Layout{Size: 1, Align: 1}
	layout16 = Layout{Size: 2, Align: 2}
	layout32 = Layout{Size: 4, Align: 4}
	layout64 = Layout{Size: 8, Align: 8}
)

// U8 is an unsigned 8 bits integer.
type U8 uint8

func (U8) Layout() Layout { return layout8 }

func (U8) Decode(b []byte) U8 {
	check(layout8, b)
	return U8(b[0])
}

func (v U8) Encode(b []byte) {
	check(layout8, b)
	b[0] = byte(v)
}

// U16 is an unsigned 16 bits integer.
type U16 uint16

func (U16) Layout() Layout { return layout16 }

func (U16) Decode(b []byte) U16 {
	check(layout16, b)
	return U16(binary.LittleEndian.Uint16(b))
}

func (v U16) Encode(b []byte) {
	check(layout16, b)
	binary.LittleEndian.PutUint16(b, uint16(v))
}

// U32 is an unsigned 32 bits integer.
type U32 uint32

func (U32) Layout() Layout { return layout32 }

func (U32) Decode(b []byte) U32 {
	check(layout32, b)
	return U32(binary.LittleEndian.Uint32(b))
}

func (v U32) Encode(b []byte) {
	check(layout32, b)
	binary.LittleEndian.PutUint32(b, uint32(v))
}

// U64 is an unsigned 64 bits integer.
type U64 uint64

func (U64) Layout() Layout { return layout64 }

func (U64) Decode(b []byte) U64 {
	check(layout64, b)
	return U64(binary.LittleEndian.Uint64(b))
}

func (v U64) Encode(b []byte) {
	check(layout64, b)
	binary.LittleEndian.PutUint64(b, uint64(v))
}

// S64 is a signed 64 bits integer.
type S64 int64

func (S64) Layout() Layout { return layout64 }

func (S64) Decode(b []byte) S64 {
	check(layout64, b)
	return S64(binary.LittleEndian.Uint64(b))
}

func (v S64) Encode(b []byte) {
	check(layout64, b)
	binary.LittleEndian.PutUint64(b, uint64(v))
}
