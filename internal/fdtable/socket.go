package fdtable

import (
	"io"
	"net"

	"github.com/stealthrocket/wasihost/internal/wasi"
)

// Socket is a resource backed by a connected socket.
type Socket struct {
	conn net.Conn
}

func NewSocket(conn net.Conn) *Socket {
	return &Socket{conn: conn}
}

// FileType distinguishes datagram and stream sockets by the network of the
// local address; *net.UnixConn implements net.PacketConn for both kinds.
func (s *Socket) FileType() wasi.FileType {
	addr := s.conn.LocalAddr()
	if addr == nil {
		addr = s.conn.RemoteAddr()
	}
	if addr == nil {
		return wasi.SocketStreamType
	}
	switch addr.Network() {
	case "udp", "udp4", "udp6", "unixgram", "ip", "ip4", "ip6":
		return wasi.SocketDGramType
	default:
		return wasi.SocketStreamType
	}
}

func (s *Socket) Close() error { return s.conn.Close() }

func (*Socket) resource() {}

func (s *Socket) read(iovs [][]byte) (wasi.Size, wasi.Errno) {
	n, err := readVec(s.conn, iovs)
	return wasi.Size(n), makeErrno(err)
}

func (s *Socket) write(iovs [][]byte) (wasi.Size, wasi.Errno) {
	n, err := writeVec(s.conn, iovs)
	return wasi.Size(n), makeErrno(err)
}

func (s *Socket) recv(iovs [][]byte, flags wasi.RIFlags) (wasi.Size, wasi.ROFlags, wasi.Errno) {
	if flags.Has(wasi.RecvPeek) {
		return 0, 0, wasi.ENOTSUP
	}
	if !flags.Has(wasi.RecvWaitAll) {
		n, errno := s.read(iovs)
		return n, 0, errno
	}
	total := 0
	for _, iov := range iovs {
		n, err := io.ReadFull(s.conn, iov)
		total += n
		if err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return wasi.Size(total), 0, makeErrno(err)
		}
	}
	return wasi.Size(total), 0, wasi.ESUCCESS
}

func (s *Socket) shutdown(flags wasi.SDFlags) wasi.Errno {
	type closeReader interface{ CloseRead() error }
	type closeWriter interface{ CloseWrite() error }

	if flags.Has(wasi.ShutdownRD) {
		c, ok := s.conn.(closeReader)
		if !ok {
			return wasi.ENOTSUP
		}
		if err := c.CloseRead(); err != nil {
			return makeErrno(err)
		}
	}
	if flags.Has(wasi.ShutdownWR) {
		c, ok := s.conn.(closeWriter)
		if !ok {
			return wasi.ENOTSUP
		}
		if err := c.CloseWrite(); err != nil {
			return makeErrno(err)
		}
	}
	return wasi.ESUCCESS
}

func (s *Socket) stat() wasi.FileStat {
	return wasi.FileStat{FileType: s.FileType(), NLink: 1}
}
