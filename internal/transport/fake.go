package transport

import (
	"net"
	"sync"

	"github.com/abustany/libratone-go/internal/protocol"
	"github.com/abustany/libratone-go/internal/xerrors"
)

type datagram struct {
	from   net.Addr
	packet protocol.Packet
}

// Network is an in-memory routing table keyed by destination port: sending
// to port P enqueues a datagram on the channel registered for P; receivers
// bound to P block on that channel. This is how tests fabricate device
// replies deterministically, without real sockets.
type Network struct {
	mu     sync.Mutex
	routes map[int]chan datagram
	closed map[int]bool
}

// NewNetwork creates an empty fake network.
func NewNetwork() *Network {
	return &Network{routes: make(map[int]chan datagram), closed: make(map[int]bool)}
}

func (n *Network) portOf(addr net.Addr) int {
	switch a := addr.(type) {
	case *net.UDPAddr:
		return a.Port
	default:
		return 0
	}
}

func (n *Network) channel(port int) chan datagram {
	n.mu.Lock()
	defer n.mu.Unlock()
	ch, ok := n.routes[port]
	if !ok {
		ch = make(chan datagram, 64)
		n.routes[port] = ch
	}
	return ch
}

// NewSender creates a Sender whose outbound packets appear to originate
// from fromAddr.
func (n *Network) NewSender(fromAddr net.Addr) *FakeSender {
	return &FakeSender{network: n, from: fromAddr}
}

// NewReceiver creates a Receiver bound to port.
func (n *Network) NewReceiver(port int) *FakeReceiver {
	return &FakeReceiver{network: n, port: port, ch: n.channel(port)}
}

// FakeSender is the in-memory transport.Sender.
type FakeSender struct {
	network *Network
	from    net.Addr
}

func (s *FakeSender) Send(p protocol.Packet, to net.Addr) (int, error) {
	port := s.network.portOf(to)
	ch := s.network.channel(port)
	select {
	case ch <- datagram{from: s.from, packet: p}:
	default:
		return 0, xerrors.NewIoError("transport.FakeSender.Send", errQueueFull(port))
	}
	return len(protocol.Encode(p)), nil
}

func (s *FakeSender) Close() error { return nil }

// FakeReceiver is the in-memory transport.Receiver.
type FakeReceiver struct {
	network *Network
	port    int
	ch      chan datagram
}

func (r *FakeReceiver) Receive() (net.Addr, protocol.Packet, error) {
	d, ok := <-r.ch
	if !ok {
		return nil, protocol.Packet{}, xerrors.NewIoError("transport.FakeReceiver.Receive", errClosed(r.port))
	}
	return d.from, d.packet, nil
}

// Close closes the receiver's channel, causing any blocked Receive to
// return an IoError. Closing a port that is already closed is a no-op.
func (r *FakeReceiver) Close() error {
	r.network.mu.Lock()
	defer r.network.mu.Unlock()
	if r.network.closed[r.port] {
		return nil
	}
	r.network.closed[r.port] = true
	close(r.ch)
	return nil
}

type queueFullError int

func (e queueFullError) Error() string { return "fake network queue full for port" }
func errQueueFull(port int) error      { return queueFullError(port) }

type closedError int

func (e closedError) Error() string { return "fake network receiver closed" }
func errClosed(port int) error      { return closedError(port) }
