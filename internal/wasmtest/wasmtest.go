// Package wasmtest assembles small WebAssembly programs for tests.
//
// The programs import host functions, declare one exported memory initialized
// with data segments, and export a _start function built from a sequence of
// instructions.
package wasmtest

import "encoding/binary"

// ValueType is a WebAssembly value type.
type ValueType byte

const (
	I32 ValueType = 0x7F
	I64 ValueType = 0x7E
)

// Import is a function imported by a program.
type Import struct {
	Module  string
	Name    string
	Params  []ValueType
	Results []ValueType
}

// Data is a segment copied to memory at instantiation.
type Data struct {
	Offset uint32
	Bytes  []byte
}

// Program is the description of a WebAssembly module.
type Program struct {
	Imports []Import
	// Number of 64 KiB pages of the memory.
	Pages uint32
	Data  []Data
	// Instructions of the _start function, without the final end opcode.
	Start []byte
}

// WASI returns the import of a wasi_snapshot_preview1 function which takes
// params i32 parameters, or i64 at the positions listed in wide, and returns
// an errno.
func WASI(name string, params int, wide ...int) Import {
	imp := Import{
		Module:  "wasi_snapshot_preview1",
		Name:    name,
		Params:  make([]ValueType, params),
		Results: []ValueType{I32},
	}
	for i := range imp.Params {
		imp.Params[i] = I32
	}
	for _, i := range wide {
		imp.Params[i] = I64
	}
	return imp
}

// ProcExit is the import of proc_exit, which returns nothing.
var ProcExit = Import{
	Module: "wasi_snapshot_preview1",
	Name:   "proc_exit",
	Params: []ValueType{I32},
}

// Encode returns the binary representation of the program.
func (p *Program) Encode() []byte {
	b := []byte{0x00, 'a', 's', 'm', 0x01, 0x00, 0x00, 0x00}
	numImports := uint32(len(p.Imports))

	var types []byte
	types = uleb(types, numImports+1)
	for _, imp := range p.Imports {
		types = funcType(types, imp.Params, imp.Results)
	}
	types = funcType(types, nil, nil)
	b = section(b, 1, types)

	var imports []byte
	imports = uleb(imports, numImports)
	for i, imp := range p.Imports {
		imports = name(imports, imp.Module)
		imports = name(imports, imp.Name)
		imports = append(imports, 0x00)
		imports = uleb(imports, uint32(i))
	}
	b = section(b, 2, imports)

	b = section(b, 3, uleb(uleb(nil, 1), numImports))

	pages := p.Pages
	if pages == 0 {
		pages = 1
	}
	b = section(b, 5, uleb(append(uleb(nil, 1), 0x00), pages))

	var exports []byte
	exports = uleb(exports, 2)
	exports = name(exports, "memory")
	exports = append(exports, 0x02, 0x00)
	exports = name(exports, "_start")
	exports = append(exports, 0x00)
	exports = uleb(exports, numImports)
	b = section(b, 7, exports)

	body := append([]byte{0x00}, p.Start...)
	body = append(body, 0x0B)
	code := uleb(nil, 1)
	code = uleb(code, uint32(len(body)))
	code = append(code, body...)
	b = section(b, 10, code)

	if len(p.Data) > 0 {
		var data []byte
		data = uleb(data, uint32(len(p.Data)))
		for _, d := range p.Data {
			data = append(data, 0x00)
			data = append(data, I32Const(int32(d.Offset))...)
			data = append(data, 0x0B)
			data = uleb(data, uint32(len(d.Bytes)))
			data = append(data, d.Bytes...)
		}
		b = section(b, 11, data)
	}
	return b
}

func section(b []byte, id byte, contents []byte) []byte {
	b = append(b, id)
	b = uleb(b, uint32(len(contents)))
	return append(b, contents...)
}

func funcType(b []byte, params, results []ValueType) []byte {
	b = append(b, 0x60)
	b = uleb(b, uint32(len(params)))
	for _, t := range params {
		b = append(b, byte(t))
	}
	b = uleb(b, uint32(len(results)))
	for _, t := range results {
		b = append(b, byte(t))
	}
	return b
}

func name(b []byte, s string) []byte {
	b = uleb(b, uint32(len(s)))
	return append(b, s...)
}

func uleb(b []byte, v uint32) []byte {
	return binary.AppendUvarint(b, uint64(v))
}

func sleb(b []byte, v int64) []byte {
	for {
		c := byte(v & 0x7F)
		v >>= 7
		if (v == 0 && c&0x40 == 0) || (v == -1 && c&0x40 != 0) {
			return append(b, c)
		}
		b = append(b, c|0x80)
	}
}

// Code concatenates instructions.
func Code(instrs ...[]byte) []byte {
	var b []byte
	for _, instr := range instrs {
		b = append(b, instr...)
	}
	return b
}

func I32Const(v int32) []byte { return sleb([]byte{0x41}, int64(v)) }

func I64Const(v int64) []byte { return sleb([]byte{0x42}, v) }

// I32Load loads the 32 bits integer at the address on top of the stack.
func I32Load() []byte { return []byte{0x28, 0x02, 0x00} }

// Call calls the function at index fn; imports come first.
func Call(fn uint32) []byte { return uleb([]byte{0x10}, fn) }

func Drop() []byte { return []byte{0x1A} }

func Unreachable() []byte { return []byte{0x00} }

// IOVec encodes an iovec pointing at buf.
func IOVec(buf, bufLen uint32) []byte {
	return binary.LittleEndian.AppendUint32(binary.LittleEndian.AppendUint32(nil, buf), bufLen)
}
