package fdtable

import (
	"io"
	"net"

	"github.com/stealthrocket/wasihost/internal/wasi"
)

// Resource is the host object that a descriptor refers to. The set of
// resource kinds is closed: *CharacterDevice, *File, *Directory, and *Socket.
type Resource interface {
	FileType() wasi.FileType
	Close() error
	resource()
}

// Device is the interface that character devices implement. Both methods
// return the number of bytes transferred.
type Device interface {
	ReadVec(iovs [][]byte) (int, error)
	WriteVec(iovs [][]byte) (int, error)
}

// CharacterDevice is a resource backed by a Device. Only reads and writes are
// supported on character devices.
type CharacterDevice struct {
	dev Device
}

func NewCharacterDevice(dev Device) *CharacterDevice {
	return &CharacterDevice{dev: dev}
}

func (*CharacterDevice) FileType() wasi.FileType { return wasi.CharacterDeviceType }

func (c *CharacterDevice) Close() error {
	if closer, ok := c.dev.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (*CharacterDevice) resource() {}

// Input returns a device reading from r. Writes to the device succeed without
// transferring any bytes.
func Input(r io.Reader) Device { return input{r} }

// Output returns a device writing to w. Reads from the device return no bytes.
func Output(w io.Writer) Device { return output{w} }

type input struct{ r io.Reader }

func (in input) ReadVec(iovs [][]byte) (int, error) {
	for _, iov := range iovs {
		if len(iov) > 0 {
			n, err := in.r.Read(iov)
			if err == io.EOF {
				err = nil
			}
			return n, err
		}
	}
	return 0, nil
}

func (input) WriteVec([][]byte) (int, error) { return 0, nil }

type output struct{ w io.Writer }

func (output) ReadVec([][]byte) (int, error) { return 0, nil }

func (out output) WriteVec(iovs [][]byte) (int, error) {
	return writeVec(out.w, iovs)
}

func writeVec(w io.Writer, iovs [][]byte) (int, error) {
	bufs := make(net.Buffers, len(iovs))
	copy(bufs, iovs)
	n, err := bufs.WriteTo(w)
	return int(n), err
}

// readVec fills iovs in order from r, stopping at the first short read.
func readVec(r io.Reader, iovs [][]byte) (int, error) {
	total := 0
	for _, iov := range iovs {
		n, err := r.Read(iov)
		total += n
		if err != nil {
			if err == io.EOF {
				err = nil
			}
			return total, err
		}
		if n < len(iov) {
			break
		}
	}
	return total, nil
}

func readVecAt(r io.ReaderAt, iovs [][]byte, offset int64) (int, error) {
	total := 0
	for _, iov := range iovs {
		n, err := r.ReadAt(iov, offset)
		total += n
		offset += int64(n)
		if err != nil {
			if err == io.EOF {
				err = nil
			}
			return total, err
		}
	}
	return total, nil
}

func writeVecAt(w io.WriterAt, iovs [][]byte, offset int64) (int, error) {
	total := 0
	for _, iov := range iovs {
		n, err := w.WriteAt(iov, offset)
		total += n
		offset += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
