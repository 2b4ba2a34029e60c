//go:build unix

package wasi

import "bytes"

// OSPath is a path in the encoding of the host file system. Unix file
// systems accept any byte sequence, so the conversion never fails.
type OSPath string

func (OSPath) FromBytes(b []byte) (OSPath, error) {
	return OSPath(bytes.Clone(b)), nil
}

func (p OSPath) Bytes() []byte { return []byte(p) }

func (p OSPath) String() string { return string(p) }
