package transport

import (
	"context"
	"net"
)

// Backend constructs the Sender and per-port Receivers the device manager
// needs; it is the injection point that lets the manager run against real
// sockets or the in-memory fake without changing its own code.
type Backend interface {
	NewSender() (Sender, error)
	NewReceiver(port int) (Receiver, error)
}

// RealBackend constructs real UDP sockets.
type RealBackend struct {
	ctx context.Context
}

// NewRealBackend creates a Backend that binds real UDP sockets, passing ctx
// to each bind. Cancelling ctx does not close sockets already bound.
func NewRealBackend(ctx context.Context) *RealBackend { return &RealBackend{ctx: ctx} }

func (b *RealBackend) NewSender() (Sender, error) { return NewUDPSender(b.ctx) }

func (b *RealBackend) NewReceiver(port int) (Receiver, error) { return NewUDPReceiver(b.ctx, port) }

// FakeBackend constructs in-memory Sender/Receivers routed through a
// shared Network, with all outbound packets appearing to originate from
// ControllerAddr.
type FakeBackend struct {
	Network        *Network
	ControllerAddr net.Addr
}

// NewFakeBackend creates a Backend over network, with outbound packets
// appearing to come from controllerAddr.
func NewFakeBackend(network *Network, controllerAddr net.Addr) *FakeBackend {
	return &FakeBackend{Network: network, ControllerAddr: controllerAddr}
}

func (b *FakeBackend) NewSender() (Sender, error) {
	return b.Network.NewSender(b.ControllerAddr), nil
}

func (b *FakeBackend) NewReceiver(port int) (Receiver, error) {
	return b.Network.NewReceiver(port), nil
}
