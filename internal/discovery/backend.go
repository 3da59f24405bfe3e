package discovery

import (
	"context"
	"net"
	"syscall"
	"time"

	"github.com/abustany/libratone-go/internal/protocol"
	"github.com/abustany/libratone-go/internal/xerrors"
	"golang.org/x/sys/unix"
)

const searchRequestBody = "M-SEARCH * HTTP/1.1"

// Backend abstracts the discovery side-effectful surface: triggering a
// search (Discover) and blocking for the next parsed reply (Poll).
type Backend interface {
	Discover() error
	Poll() (Reply, error)
	Close() error
}

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

// MulticastBackend binds the vendor's discovery multicast port (1800, not
// the IANA SSDP 1900) and speaks the plain M-SEARCH/NOTIFY exchange.
type MulticastBackend struct {
	conn net.PacketConn
	dest net.Addr
	buf  []byte
}

// NewMulticastBackend binds the discovery socket.
func NewMulticastBackend(ctx context.Context) (*MulticastBackend, error) {
	conn, err := reusableListenConfig.ListenPacket(ctx, "udp4", ":"+portString(protocol.DiscoveryPort))
	if err != nil {
		return nil, xerrors.NewIoError("discovery.NewMulticastBackend", err)
	}
	dest := &net.UDPAddr{IP: net.ParseIP(protocol.MulticastAddr), Port: protocol.DiscoveryPort}
	return &MulticastBackend{conn: conn, dest: dest, buf: make([]byte, 4096)}, nil
}

func (b *MulticastBackend) Discover() error {
	if _, err := b.conn.WriteTo([]byte(searchRequestBody), b.dest); err != nil {
		return xerrors.NewIoError("discovery.MulticastBackend.Discover", err)
	}
	return nil
}

func (b *MulticastBackend) Poll() (Reply, error) {
	n, _, err := b.conn.ReadFrom(b.buf)
	if err != nil {
		return Reply{}, xerrors.NewIoError("discovery.MulticastBackend.Poll", err)
	}
	if n == 0 {
		return Reply{}, xerrors.NewDecodeError("discovery.MulticastBackend.Poll", errEmptyDatagram{})
	}
	return Parse(b.buf[:n])
}

func (b *MulticastBackend) Close() error { return b.conn.Close() }

type errEmptyDatagram struct{}

func (errEmptyDatagram) Error() string { return "empty discovery datagram" }

func portString(p int) string {
	if p == 0 {
		return "0"
	}
	var buf [8]byte
	i := len(buf)
	n := p
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// FakeBackend delivers every configured device's reply a short, configurable
// delay after Discover is called — asynchronously and all at once, since a
// real M-SEARCH broadcast is answered by every listening device, not just
// one. Devices registered after construction (via AddReply) are delivered
// on the next Discover call, mirroring a speaker that powers on between
// search rounds.
type FakeBackend struct {
	Delay   time.Duration
	pending []Reply
	replies chan Reply
}

// NewFakeBackend creates a fake discovery backend that will deliver the
// given replies, all of them, after Delay, the next time Discover is
// called.
func NewFakeBackend(delay time.Duration, replies ...Reply) *FakeBackend {
	return &FakeBackend{Delay: delay, pending: replies, replies: make(chan Reply, len(replies)+8)}
}

// AddReply registers another device's reply to be delivered on the next
// Discover call.
func (b *FakeBackend) AddReply(r Reply) {
	b.pending = append(b.pending, r)
}

// Discover schedules delivery of every pending reply after Delay; it
// returns immediately.
func (b *FakeBackend) Discover() error {
	pending := b.pending
	b.pending = nil
	for _, r := range pending {
		r := r
		go func() {
			if b.Delay > 0 {
				time.Sleep(b.Delay)
			}
			b.replies <- r
		}()
	}
	return nil
}

func (b *FakeBackend) Poll() (Reply, error) {
	r, ok := <-b.replies
	if !ok {
		return Reply{}, xerrors.NewIoError("discovery.FakeBackend.Poll", errClosedFake{})
	}
	return r, nil
}

func (b *FakeBackend) Close() error {
	close(b.replies)
	return nil
}

type errClosedFake struct{}

func (errClosedFake) Error() string { return "fake discovery backend closed" }
