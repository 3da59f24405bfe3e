package manager

import (
	"net"
	"testing"
	"time"

	"github.com/abustany/libratone-go/internal/catalog"
	"github.com/abustany/libratone-go/internal/devicebus"
	"github.com/abustany/libratone-go/internal/discovery"
	"github.com/abustany/libratone-go/internal/protocol"
	"github.com/abustany/libratone-go/internal/transport"
)

var (
	controllerAddr = &net.UDPAddr{IP: net.ParseIP("192.168.10.1"), Port: 0}
	testDeviceAddr = &net.UDPAddr{IP: net.ParseIP("192.168.10.10"), Port: protocol.CommandSendPort}
)

func waitEvent(t *testing.T, ch <-chan devicebus.Event) devicebus.Event {
	t.Helper()
	select {
	case evt := <-ch:
		return evt
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return devicebus.Event{}
}

// runFakeDevice answers fetches for DeviceName and Volume, mirroring the
// scripted behavior of a single canned test device: DeviceName -> "Pretty
// name", Volume -> "35". It ignores every other fetch, matching scenario 5.
func runFakeDevice(net1 *transport.Network) {
	recv := net1.NewReceiver(protocol.CommandSendPort)
	send := net1.NewSender(testDeviceAddr)

	go func() {
		for {
			_, packet, err := recv.Receive()
			if err != nil {
				return
			}
			switch packet.Command {
			case catalog.Table[catalog.KindDeviceName].GetCmdID:
				reply := protocol.Packet{
					CommandType: protocol.CommandTypeFetch,
					Command:     catalog.Table[catalog.KindDeviceName].GetReplyID,
					CommandData: catalog.EncodeDeviceName("Pretty name"),
				}
				send.Send(reply, &net.UDPAddr{Port: protocol.CommandReplyPort})
			case catalog.Table[catalog.KindVolume].GetCmdID:
				data, _ := catalog.EncodeVolume(35)
				reply := protocol.Packet{
					CommandType: protocol.CommandTypeFetch,
					Command:     catalog.Table[catalog.KindVolume].GetReplyID,
					CommandData: data,
				}
				send.Send(reply, &net.UDPAddr{Port: protocol.CommandReplyPort})
			}
		}
	}()
}

func newTestManager(t *testing.T, net1 *transport.Network, replies ...discovery.Reply) (*Manager, <-chan devicebus.Event) {
	t.Helper()
	transportBackend := transport.NewFakeBackend(net1, controllerAddr)
	discoveryBackend := discovery.NewFakeBackend(5*time.Millisecond, replies...)

	m, err := New(transportBackend, discoveryBackend)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(m.Stop)

	_, ch := m.Subscribe()
	return m, ch
}

func TestEndToEndDiscoveryAndFetch(t *testing.T) {
	net1 := transport.NewNetwork()
	runFakeDevice(net1)

	reply := discovery.Reply{DeviceID: "test-device", IPAddr: testDeviceAddr.IP, Port: protocol.CommandSendPort}
	m, ch := newTestManager(t, net1, reply)

	discovered := waitEvent(t, ch)
	if discovered.Kind != devicebus.DeviceDiscovered || discovered.Device.ID != "test-device" {
		t.Fatalf("unexpected first event: %+v", discovered)
	}

	if err := m.FetchInfo("test-device"); err != nil {
		t.Fatalf("FetchInfo: %v", err)
	}

	nameUpdate := waitEvent(t, ch)
	if nameUpdate.Kind != devicebus.DeviceUpdated || nameUpdate.Device.Name == nil || *nameUpdate.Device.Name != "Pretty name" {
		t.Fatalf("expected name update, got %+v", nameUpdate)
	}

	volUpdate := waitEvent(t, ch)
	if volUpdate.Kind != devicebus.DeviceUpdated || volUpdate.Device.Volume == nil || *volUpdate.Device.Volume != 35 {
		t.Fatalf("expected volume update, got %+v", volUpdate)
	}
}

func TestFetchInfoUnknownDevice(t *testing.T) {
	net1 := transport.NewNetwork()
	m, _ := newTestManager(t, net1)

	if err := m.FetchInfo("no-such-device"); err == nil {
		t.Fatalf("expected UnknownDeviceError")
	}
}

// playControlToggleDevice tracks a playing bit the way a real speaker
// would, toggling it on PlayControl sets and notifying the new state.
type playControlToggleDevice struct {
	playing bool
}

func runPlayControlToggleDevice(net1 *transport.Network, state *playControlToggleDevice) {
	recv := net1.NewReceiver(protocol.CommandSendPort)
	send := net1.NewSender(testDeviceAddr)

	go func() {
		for {
			_, packet, err := recv.Receive()
			if err != nil {
				return
			}
			if packet.Command != catalog.Table[catalog.KindPlayControl].SetCmdID {
				continue
			}
			verb, decodeErr := decodePlayControlWire(packet.CommandData)
			if decodeErr != nil {
				continue
			}
			switch verb {
			case catalog.PlayControlPlay:
				state.playing = true
			case catalog.PlayControlToggle:
				state.playing = !state.playing
			}
			digit := byte('1')
			if state.playing {
				digit = '0'
			}
			notif := protocol.Packet{
				CommandType: protocol.CommandTypeSet,
				Command:     catalog.Table[catalog.KindPlayControl].NotifyID,
				CommandData: []byte{digit},
			}
			send.Send(notif, &net.UDPAddr{Port: protocol.NotifyRecvPort})
		}
	}()
}

type unrecognizedVerbError string

func (e unrecognizedVerbError) Error() string { return "unrecognized play control verb: " + string(e) }

func decodePlayControlWire(data []byte) (catalog.PlayControlVerb, error) {
	switch string(data) {
	case "PLAY":
		return catalog.PlayControlPlay, nil
	case "TOGGL":
		return catalog.PlayControlToggle, nil
	default:
		return 0, unrecognizedVerbError(data)
	}
}

func TestPlayControlToggleNotification(t *testing.T) {
	net1 := transport.NewNetwork()
	state := &playControlToggleDevice{}
	runPlayControlToggleDevice(net1, state)

	reply := discovery.Reply{DeviceID: "test-device", IPAddr: testDeviceAddr.IP, Port: protocol.CommandSendPort}
	m, ch := newTestManager(t, net1, reply)
	waitEvent(t, ch) // DeviceDiscovered

	send := func(v catalog.PlayControlVerb) {
		wire := catalog.EncodePlayControl(v)
		if err := m.SendPacket("test-device", catalog.Set(catalog.KindPlayControl, wire)); err != nil {
			t.Fatalf("SendPacket: %v", err)
		}
	}

	send(catalog.PlayControlPlay)
	evt := waitEvent(t, ch)
	if evt.Device.PlayStatus == nil || *evt.Device.PlayStatus != catalog.PlayControlPlay {
		t.Fatalf("expected PlayControlPlay after Play, got %+v", evt.Device.PlayStatus)
	}

	send(catalog.PlayControlToggle)
	evt = waitEvent(t, ch)
	if evt.Device.PlayStatus == nil || *evt.Device.PlayStatus != catalog.PlayControlStop {
		t.Fatalf("expected digit '1' (Stop) after first Toggle, got %+v", evt.Device.PlayStatus)
	}

	send(catalog.PlayControlToggle)
	evt = waitEvent(t, ch)
	if evt.Device.PlayStatus == nil || *evt.Device.PlayStatus != catalog.PlayControlPlay {
		t.Fatalf("expected digit '0' (Play) after second Toggle, got %+v", evt.Device.PlayStatus)
	}
}
