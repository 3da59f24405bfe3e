// Package fixture loads a YAML description of simulated speakers, for
// exercising the discovery/transport fakes without real hardware. A fixture
// device behaves the way the scripted test double does: it answers a fixed
// set of fetches with its configured field values and otherwise stays
// silent.
package fixture

import (
	"net"
	"os"

	"github.com/abustany/libratone-go/internal/catalog"
	"github.com/abustany/libratone-go/internal/discovery"
	"github.com/abustany/libratone-go/internal/protocol"
	"github.com/abustany/libratone-go/internal/transport"
	"github.com/abustany/libratone-go/internal/xerrors"
	"gopkg.in/yaml.v3"
)

// Device is one simulated speaker: its discovery identity plus the values
// it reports when fetched.
type Device struct {
	ID            string `yaml:"id"`
	Address       string `yaml:"address"`
	Name          string `yaml:"name"`
	Volume        int    `yaml:"volume"`
	ChargingState int    `yaml:"charging_state"`
	BatteryLevel  int    `yaml:"battery_level"`
}

// File is the top-level shape of a fixture YAML document.
type File struct {
	Devices []Device `yaml:"devices"`
}

// Load reads and parses a fixture file.
func Load(path string) ([]Device, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.NewIoError("fixture.Load", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, xerrors.NewDecodeError("fixture.Load", err)
	}
	return f.Devices, nil
}

// DiscoveryReply builds the discovery reply a real device with this
// fixture's identity would send in response to M-SEARCH.
func (d Device) DiscoveryReply() discovery.Reply {
	return discovery.Reply{
		DeviceName:  d.Name,
		DeviceID:    d.ID,
		DeviceState: "1",
		Port:        protocol.CommandSendPort,
		IPAddr:      net.ParseIP(d.Address),
	}
}

// Serve spawns a goroutine that answers DeviceName/Volume/ChargingState/
// BatteryLevel fetches addressed to this device's IP with its configured
// values, and ignores everything else. Serve returns immediately; the
// goroutine exits once the device's receiver is closed.
func (d Device) Serve(network *transport.Network) {
	recv := network.NewReceiver(protocol.CommandSendPort)
	send := network.NewSender(&net.UDPAddr{IP: net.ParseIP(d.Address), Port: protocol.CommandSendPort})

	go func() {
		for {
			_, packet, err := recv.Receive()
			if err != nil {
				return
			}

			reply, ok := d.replyTo(packet)
			if !ok {
				continue
			}
			send.Send(reply, &net.UDPAddr{Port: protocol.CommandReplyPort})
		}
	}()
}

func (d Device) replyTo(packet protocol.Packet) (protocol.Packet, bool) {
	t := catalog.Table

	switch packet.Command {
	case t[catalog.KindDeviceName].GetCmdID:
		return protocol.Packet{
			CommandType: protocol.CommandTypeFetch,
			Command:     t[catalog.KindDeviceName].GetReplyID,
			CommandData: catalog.EncodeDeviceName(d.Name),
		}, true
	case t[catalog.KindVolume].GetCmdID:
		data, err := catalog.EncodeVolume(d.Volume)
		if err != nil {
			return protocol.Packet{}, false
		}
		return protocol.Packet{
			CommandType: protocol.CommandTypeFetch,
			Command:     t[catalog.KindVolume].GetReplyID,
			CommandData: data,
		}, true
	case t[catalog.KindChargingState].GetCmdID:
		return protocol.Packet{
			CommandType: protocol.CommandTypeFetch,
			Command:     t[catalog.KindChargingState].GetReplyID,
			CommandData: []byte{byte('0' + d.ChargingState)},
		}, true
	case t[catalog.KindBatteryLevel].GetCmdID:
		return protocol.Packet{
			CommandType: protocol.CommandTypeFetch,
			Command:     t[catalog.KindBatteryLevel].GetReplyID,
			CommandData: []byte(itoa(d.BatteryLevel)),
		}, true
	default:
		return protocol.Packet{}, false
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [12]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
