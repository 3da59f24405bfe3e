package transport

import (
	"context"
	"net"
	"syscall"

	"github.com/abustany/libratone-go/internal/protocol"
	"github.com/abustany/libratone-go/internal/xerrors"
	"golang.org/x/sys/unix"
)

// reusableListenConfig sets SO_REUSEADDR and SO_REUSEPORT on the socket
// before bind, so the controller can coexist with the vendor's own apps
// listening on the same fixed ports on this host.
var reusableListenConfig = net.ListenConfig{
	Control: func(_, _ string, c syscall.RawConn) error {
		var sockErr error
		err := c.Control(func(fd uintptr) {
			if sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); sockErr != nil {
				return
			}
			sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
		})
		if err != nil {
			return err
		}
		return sockErr
	},
}

// UDPSender is the real transport Sender: a UDPv4 socket bound to an
// ephemeral local port.
type UDPSender struct {
	conn net.PacketConn
}

// NewUDPSender binds an ephemeral-port UDPv4 socket for sending.
func NewUDPSender(ctx context.Context) (*UDPSender, error) {
	conn, err := reusableListenConfig.ListenPacket(ctx, "udp4", ":0")
	if err != nil {
		return nil, xerrors.NewIoError("transport.NewUDPSender", err)
	}
	return &UDPSender{conn: conn}, nil
}

func (s *UDPSender) Send(p protocol.Packet, to net.Addr) (int, error) {
	n, err := s.conn.WriteTo(protocol.Encode(p), to)
	if err != nil {
		return n, xerrors.NewIoError("transport.UDPSender.Send", err)
	}
	return n, nil
}

func (s *UDPSender) Close() error { return s.conn.Close() }

// UDPReceiver is the real transport Receiver: a UDPv4 socket bound to a
// fixed, well-known inbound port (7778 or 3333).
type UDPReceiver struct {
	conn net.PacketConn
	buf  []byte
}

// NewUDPReceiver binds a UDPv4 socket listening on the given fixed port.
func NewUDPReceiver(ctx context.Context, port int) (*UDPReceiver, error) {
	conn, err := reusableListenConfig.ListenPacket(ctx, "udp4", udpAddr(port))
	if err != nil {
		return nil, xerrors.NewIoError("transport.NewUDPReceiver", err)
	}
	return &UDPReceiver{conn: conn, buf: make([]byte, recvBufferSize)}, nil
}

func (r *UDPReceiver) Receive() (net.Addr, protocol.Packet, error) {
	n, from, err := r.conn.ReadFrom(r.buf)
	if err != nil {
		return nil, protocol.Packet{}, xerrors.NewIoError("transport.UDPReceiver.Receive", err)
	}
	p, err := protocol.Parse(r.buf[:n])
	if err != nil {
		return from, protocol.Packet{}, err
	}
	return from, p, nil
}

func (r *UDPReceiver) Close() error { return r.conn.Close() }

func udpAddr(port int) string {
	return ":" + itoa(port)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [8]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
