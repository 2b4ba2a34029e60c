package wasi

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// ConversionError is returned when a value read from the guest memory has no
// valid interpretation as a rich value. The host functions report it to the
// guest as EINVAL.
type ConversionError struct {
	Type  string
	Value any
}

func (e *ConversionError) Error() string {
	switch v := e.Value.(type) {
	case []byte:
		return fmt.Sprintf("invalid %s: %q", e.Type, v)
	default:
		return fmt.Sprintf("invalid %s: %#x", e.Type, v)
	}
}

func enumFromNative[E, W constraints.Unsigned](typ string, w W, count int) (E, error) {
	if uint64(w) >= uint64(count) {
		return 0, &ConversionError{Type: typ, Value: uint64(w)}
	}
	return E(w), nil
}

func flagsFromNative[F, W constraints.Unsigned](typ string, w W, mask uint64) (F, error) {
	if uint64(w)&^mask != 0 {
		return 0, &ConversionError{Type: typ, Value: uint64(w)}
	}
	return F(w), nil
}
