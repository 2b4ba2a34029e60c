package wasi

import (
	"bytes"
	"unicode/utf8"
)

// String is the constraint satisfied by the representations of strings
// exchanged with the guest: arguments, environment variables, and paths.
//
// The host is parameterized over the representation so that programs which
// need byte-exact paths can opt out of UTF-8 validation.
type String[S any] interface {
	// FromBytes converts b to the string representation. The returned value
	// must not retain b, which usually aliases the guest memory.
	FromBytes(b []byte) (S, error)
	// Bytes returns the encoding of the string written to the guest memory.
	Bytes() []byte
}

// StringFromNative converts b to a string of representation S.
func StringFromNative[S String[S]](b []byte) (S, error) {
	var s S
	return s.FromBytes(b)
}

// MakeString converts a Go string to representation S, panicking if the
// representation rejects it. It is intended for values supplied by the host
// configuration.
func MakeString[S String[S]](s string) S {
	v, err := StringFromNative[S]([]byte(s))
	if err != nil {
		panic(err)
	}
	return v
}

// UTF8 is a string which must be valid UTF-8.
type UTF8 string

func (UTF8) FromBytes(b []byte) (UTF8, error) {
	if !utf8.Valid(b) {
		return "", &ConversionError{Type: "UTF-8 string", Value: bytes.Clone(b)}
	}
	return UTF8(b), nil
}

func (s UTF8) Bytes() []byte { return []byte(s) }

func (s UTF8) String() string { return string(s) }

// Bytes is a string of arbitrary bytes.
type Bytes []byte

func (Bytes) FromBytes(b []byte) (Bytes, error) {
	return Bytes(bytes.Clone(b)), nil
}

func (s Bytes) Bytes() []byte { return s }

func (s Bytes) String() string { return string(s) }

// CString is a string which may not contain NUL bytes, as required by the
// C strings of operating system interfaces.
type CString string

func (CString) FromBytes(b []byte) (CString, error) {
	if bytes.IndexByte(b, 0) >= 0 {
		return "", &ConversionError{Type: "C string", Value: bytes.Clone(b)}
	}
	return CString(b), nil
}

func (s CString) Bytes() []byte { return []byte(s) }

func (s CString) String() string { return string(s) }
