// Package manager implements the device manager: the concurrent state
// machine that discovers speakers, issues fetches, acknowledges
// notifications, maintains per-device state, and publishes change events
// to subscribers.
package manager

import (
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/abustany/libratone-go/internal/catalog"
	"github.com/abustany/libratone-go/internal/devicebus"
	"github.com/abustany/libratone-go/internal/discovery"
	"github.com/abustany/libratone-go/internal/logger"
	"github.com/abustany/libratone-go/internal/protocol"
	"github.com/abustany/libratone-go/internal/transport"
	"github.com/abustany/libratone-go/internal/xerrors"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

// restartDelay is the fixed back-off between restarts of a failed worker
// loop. A constant backoff.ConstantBackOff (rather than an exponential
// policy) matches the source behavior's flat 5-second retry.
const restartDelay = 5 * time.Second

// Manager is the device manager: discovery + device table + event bus +
// command dispatch, all behind a single mutex (table, subscribers, and
// the send socket form one critical section — see devicebus's package
// doc for why it isn't split per field).
type Manager struct {
	mu     sync.Mutex
	table  *devicebus.Table
	bus    *devicebus.Bus
	sender transport.Sender

	transportBackend transport.Backend
	discoveryBackend discovery.Backend

	log *slog.Logger

	stopOnce sync.Once
	stop     chan struct{}
}

// New constructs a Manager and immediately spawns its three supervised
// worker loops (discovery, notification, command-reply). The manager owns
// transportBackend and discoveryBackend for its lifetime.
func New(transportBackend transport.Backend, discoveryBackend discovery.Backend) (*Manager, error) {
	sender, err := transportBackend.NewSender()
	if err != nil {
		return nil, err
	}

	m := &Manager{
		table:             devicebus.NewTable(),
		bus:               devicebus.NewBus(),
		sender:            sender,
		transportBackend:  transportBackend,
		discoveryBackend:  discoveryBackend,
		log:               logger.Logger().With("component", "device_manager"),
		stop:              make(chan struct{}),
	}

	notifyReceiver, err := transportBackend.NewReceiver(protocol.NotifyRecvPort)
	if err != nil {
		return nil, err
	}
	replyReceiver, err := transportBackend.NewReceiver(protocol.CommandReplyPort)
	if err != nil {
		return nil, err
	}

	m.superviseForever("discovery", m.discoveryLoop)
	m.superviseForever("notification", func() error { return m.notificationLoop(notifyReceiver) })
	m.superviseForever("command reply", func() error { return m.commandReplyLoop(replyReceiver) })

	return m, nil
}

// superviseForever runs fn in its own goroutine inside a restart loop: if
// fn returns an error, the manager logs it, waits restartDelay, and
// re-invokes fn. fn returning nil is a programming error (workers are
// supposed to loop forever) and is treated as fatal — logged and not
// restarted.
func (m *Manager) superviseForever(name string, fn func() error) {
	go func() {
		log := logger.WithWorker(m.log, name)
		b := backoff.NewConstantBackOff(restartDelay)
		for {
			select {
			case <-m.stop:
				return
			default:
			}

			err := fn()
			if err == nil {
				log.Error("worker exited without error; this is a bug, workers must loop forever")
				return
			}

			log.Error("worker error, restarting", "error", err, "delay", restartDelay)
			select {
			case <-m.stop:
				return
			case <-time.After(b.NextBackOff()):
			}
		}
	}()
}

// Stop closes the send socket and signals the worker loops to exit; a
// worker exits when it next checks the signal, before a restart. Workers
// blocked in a receive or poll are not interrupted, and the receivers and
// the discovery backend are not closed. It does not remove devices or
// drain subscribers.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
		m.sender.Close()
	})
}

// Subscribe registers a new event channel. The caller should keep reading
// from it; once it stops draining, the manager prunes it on the next
// publish whose buffer is exhausted.
func (m *Manager) Subscribe() (uuid.UUID, <-chan devicebus.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bus.Subscribe(32)
}

// FetchInfo issues one fetch packet per known field: DeviceName, Volume,
// PlayControl, PlayInfo, ChargingState, BatteryLevel, PreChannel.
func (m *Manager) FetchInfo(deviceID string) error {
	kinds := []catalog.Kind{
		catalog.KindDeviceName,
		catalog.KindVolume,
		catalog.KindPlayControl,
		catalog.KindPlayInfo,
		catalog.KindChargingState,
		catalog.KindBatteryLevel,
		catalog.KindPreChannel,
	}
	for _, k := range kinds {
		if err := m.SendPacket(deviceID, catalog.Fetch(k)); err != nil {
			return err
		}
	}
	return nil
}

// SetVolume clamps v to [0, 100] and emits a Volume set to deviceID.
func (m *Manager) SetVolume(deviceID string, v int) error {
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	data, err := catalog.EncodeVolume(v)
	if err != nil {
		return err
	}
	return m.SendPacket(deviceID, catalog.Set(catalog.KindVolume, data))
}

// SendPacket sends packet to the device on the fixed outbound command
// port. It fails with UnknownDeviceError when deviceID is not in the
// table.
func (m *Manager) SendPacket(deviceID string, p protocol.Packet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sendPacketLocked(deviceID, p)
}

func (m *Manager) sendPacketLocked(deviceID string, p protocol.Packet) error {
	d, ok := m.table.Get(deviceID)
	if !ok {
		return xerrors.NewUnknownDeviceError(deviceID)
	}
	to := &net.UDPAddr{IP: d.Addr, Port: protocol.CommandSendPort}
	_, err := m.sender.Send(p, to)
	return err
}

func (m *Manager) discoveryLoop() error {
	if err := m.discoveryBackend.Discover(); err != nil {
		return err
	}
	for {
		reply, err := m.discoveryBackend.Poll()
		if xerrors.IsIoError(err) {
			return err
		}
		if err != nil {
			m.log.Warn("invalid discovery reply", "error", err)
			continue
		}
		m.registerDevice(reply)
	}
}

func (m *Manager) registerDevice(reply discovery.Reply) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d := devicebus.NewDevice(reply.DeviceID, reply.IPAddr)
	if !m.table.Register(d) {
		return
	}
	m.bus.Publish(devicebus.Event{Kind: devicebus.DeviceDiscovered, Device: d.Clone()})
}

func (m *Manager) notificationLoop(receiver transport.Receiver) error {
	for {
		from, packet, err := receiver.Receive()
		if xerrors.IsIoError(err) {
			return err
		}
		if err != nil {
			m.log.Warn("invalid notification packet", "error", err)
			continue
		}
		m.handleNotification(from, packet)
	}
}

func (m *Manager) commandReplyLoop(receiver transport.Receiver) error {
	for {
		from, packet, err := receiver.Receive()
		if xerrors.IsIoError(err) {
			return err
		}
		if err != nil {
			m.log.Warn("invalid command reply packet", "error", err)
			continue
		}
		m.handleCommandReply(from, packet)
	}
}

func (m *Manager) handleNotification(from net.Addr, packet protocol.Packet) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ackAddr := ackAddrFor(from)
	if ackAddr != nil {
		if _, err := m.sender.Send(protocol.Ack(packet), ackAddr); err != nil {
			m.log.Warn("error acknowledging notification", "error", err, "from", from)
		}
	}

	m.log.Debug("handling notification", "from", from, "summary", catalog.FormatNotification(packet))
	m.handleIncomingPacketLocked(from, packet)
}

func (m *Manager) handleCommandReply(from net.Addr, packet protocol.Packet) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.log.Debug("handling command reply", "from", from, "summary", catalog.FormatReply(packet))
	m.handleIncomingPacketLocked(from, packet)
}

func ackAddrFor(from net.Addr) net.Addr {
	udpAddr, ok := from.(*net.UDPAddr)
	if !ok {
		return nil
	}
	return &net.UDPAddr{IP: udpAddr.IP, Port: protocol.NotifyAckPort}
}

// handleIncomingPacketLocked must be called with m.mu held. It locates the
// device whose Addr matches the sender's IP (no match -> drop silently),
// dispatches on packet.Command, and — on a successful mutation — publishes
// DeviceUpdated with the fresh snapshot. Decode errors are logged and
// swallowed per packet.
func (m *Manager) handleIncomingPacketLocked(from net.Addr, packet protocol.Packet) {
	ip := addrIP(from)
	if ip == nil {
		return
	}
	d, ok := m.table.LookupByAddr(ip)
	if !ok {
		return
	}

	mutated, err := applyUpdate(d, packet)
	if err != nil {
		m.log.Warn("discarding packet with undecodable payload", "device_id", d.ID, "command", packet.Command, "error", err)
		return
	}
	if !mutated {
		return
	}

	m.bus.Publish(devicebus.Event{Kind: devicebus.DeviceUpdated, Device: d.Clone()})
}

func addrIP(addr net.Addr) net.IP {
	udpAddr, ok := addr.(*net.UDPAddr)
	if !ok {
		return nil
	}
	return udpAddr.IP
}

// applyUpdate dispatches packet.Command against the authoritative
// REPLY/NOTIFY/GET id table and mutates d in place, reporting whether any
// field changed.
func applyUpdate(d *devicebus.Device, packet protocol.Packet) (bool, error) {
	t := catalog.Table

	switch packet.Command {
	case t[catalog.KindDeviceName].GetReplyID:
		name, err := catalog.DecodeDeviceName(packet.CommandData)
		if err != nil {
			return false, err
		}
		d.Name = &name
		return true, nil

	case t[catalog.KindVolume].GetReplyID:
		v, err := catalog.DecodeVolume(packet.CommandData)
		if err != nil {
			return false, err
		}
		d.Volume = &v
		return true, nil

	case t[catalog.KindPlayControl].GetReplyID:
		v, err := catalog.DecodePlayControl(packet.CommandData)
		if err != nil {
			return false, err
		}
		d.PlayStatus = &v
		return true, nil

	case t[catalog.KindPlayInfo].GetReplyID:
		v, err := catalog.DecodePlayInfo(packet.CommandData)
		if err != nil {
			return false, err
		}
		d.PlayInfo = &v
		return true, nil

	case t[catalog.KindChargingState].GetReplyID:
		v, err := catalog.DecodeChargingState(packet.CommandData)
		if err != nil {
			return false, err
		}
		d.ChargingState = &v
		return true, nil

	case t[catalog.KindBatteryLevel].GetReplyID, t[catalog.KindBatteryLevel].NotifyID:
		v, err := catalog.DecodeBatteryLevel(packet.CommandData)
		if err != nil {
			return false, err
		}
		d.BatteryLevel = &v
		return true, nil

	case t[catalog.KindPreChannel].GetCmdID:
		v, err := catalog.DecodePreChannel(packet.CommandData)
		if err != nil {
			return false, err
		}
		d.PreChannels = v
		return true, nil

	default:
		return false, nil
	}
}
