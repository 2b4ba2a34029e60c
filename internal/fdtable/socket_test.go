package fdtable_test

import (
	"io"
	"net"
	"testing"

	"github.com/stealthrocket/wasihost/internal/assert"
	"github.com/stealthrocket/wasihost/internal/fdtable"
	"github.com/stealthrocket/wasihost/internal/wasi"
	"golang.org/x/net/nettest"
)

func dialSocket(t *testing.T) (*descriptor, net.Conn) {
	l, err := nettest.NewLocalListener("tcp")
	assert.OK(t, err)
	t.Cleanup(func() { l.Close() })

	accept := make(chan net.Conn, 1)
	go func() {
		c, err := l.Accept()
		if err != nil {
			close(accept)
			return
		}
		accept <- c
	}()

	c, err := net.Dial(l.Addr().Network(), l.Addr().String())
	assert.OK(t, err)
	peer, ok := <-accept
	assert.Equal(t, ok, true)
	t.Cleanup(func() { peer.Close() })

	d := fdtable.NewDescriptor[wasi.UTF8](fdtable.NewSocket(c), fdtable.Rights{Base: fdtable.SocketRights}, 0)
	t.Cleanup(d.Release)
	return d, peer
}

func TestSocket(t *testing.T) {
	d, peer := dialSocket(t)
	assert.Equal(t, d.Stat().FileType, wasi.SocketStreamType)

	n, errno := d.SockSend([][]byte{[]byte("ping"), []byte("!")}, 0)
	assert.Equal(t, errno, wasi.ESUCCESS)
	assert.Equal(t, n, 5)

	buf := make([]byte, 5)
	_, err := io.ReadFull(peer, buf)
	assert.OK(t, err)
	assert.Equal(t, string(buf), "ping!")

	_, err = peer.Write([]byte("pong"))
	assert.OK(t, err)

	b1, b2 := make([]byte, 2), make([]byte, 2)
	n, flags, errno := d.SockRecv([][]byte{b1, b2}, wasi.RecvWaitAll)
	assert.Equal(t, errno, wasi.ESUCCESS)
	assert.Equal(t, n, 4)
	assert.Equal(t, flags, 0)
	assert.Equal(t, string(b1)+string(b2), "pong")

	_, _, errno = d.SockRecv([][]byte{b1}, wasi.RecvPeek)
	assert.Equal(t, errno, wasi.ENOTSUP)

	stat, errno := d.FileStat()
	assert.Equal(t, errno, wasi.ESUCCESS)
	assert.Equal(t, stat.FileType, wasi.SocketStreamType)

	assert.Equal(t, d.SockShutdown(wasi.ShutdownWR), wasi.ESUCCESS)
	n2, err := peer.Read(buf)
	assert.Equal(t, n2, 0)
	assert.Error(t, err, io.EOF)
}

func TestSocketRights(t *testing.T) {
	d, _ := dialSocket(t)
	assert.Equal(t, d.SetRights(wasi.FDReadRight, 0), wasi.ESUCCESS)

	_, errno := d.SockSend([][]byte{[]byte("x")}, 0)
	assert.Equal(t, errno, wasi.ENOTCAPABLE)
	assert.Equal(t, d.SockShutdown(wasi.ShutdownRD), wasi.ENOTCAPABLE)
}

func TestSocketOperationsOnDevice(t *testing.T) {
	d, dev := newDevice(wasi.AllRights)
	_, errno := d.SockSend([][]byte{[]byte("x")}, 0)
	assert.Equal(t, errno, wasi.ENOTSUP)
	assert.Equal(t, dev.writes, 0)
}

func TestSocketFileType(t *testing.T) {
	for _, test := range []struct {
		network  string
		fileType wasi.FileType
	}{
		{"tcp", wasi.SocketStreamType},
		{"unix", wasi.SocketStreamType},
		{"udp", wasi.SocketDGramType},
	} {
		t.Run(test.network, func(t *testing.T) {
			if !nettest.TestableNetwork(test.network) {
				t.Skipf("%s sockets are not supported on this platform", test.network)
			}

			var addr net.Addr
			if test.network == "udp" {
				c, err := net.ListenPacket("udp", "127.0.0.1:0")
				assert.OK(t, err)
				t.Cleanup(func() { c.Close() })
				addr = c.LocalAddr()
			} else {
				l, err := nettest.NewLocalListener(test.network)
				assert.OK(t, err)
				t.Cleanup(func() { l.Close() })
				addr = l.Addr()
			}

			c, err := net.Dial(addr.Network(), addr.String())
			assert.OK(t, err)
			t.Cleanup(func() { c.Close() })

			assert.Equal(t, fdtable.NewSocket(c).FileType(), test.fileType)
		})
	}
}
