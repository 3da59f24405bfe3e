// Package transport provides the Sender/Receiver capability interfaces
// the device manager uses to move packets, plus a real UDP implementation
// and an in-memory fake for deterministic tests.
package transport

import (
	"net"

	"github.com/abustany/libratone-go/internal/protocol"
)

// Sender sends a packet to destination, returning the byte count written.
type Sender interface {
	Send(p protocol.Packet, to net.Addr) (int, error)
	Close() error
}

// Receiver blocks until a packet is available, returning its source
// address alongside the decoded packet.
type Receiver interface {
	Receive() (net.Addr, protocol.Packet, error)
	Close() error
}

const recvBufferSize = 64 * 1024
