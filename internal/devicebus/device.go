// Package devicebus holds the per-device record, the device table, and the
// fan-out event bus. None of its types lock internally: callers (the
// device manager) hold a single mutex around the table, the bus, and the
// send socket together, so a read-modify-publish sequence is atomic.
package devicebus

import (
	"net"

	"github.com/abustany/libratone-go/internal/catalog"
)

// Device is a controller-side snapshot of one speaker's known state.
// Addr is immutable after creation; every other field starts nil/zero and
// is populated as replies and notifications arrive.
type Device struct {
	ID   string
	Addr net.IP

	Name          *string
	Volume        *int
	PlayStatus    *catalog.PlayControlVerb
	PlayInfo      *catalog.PlayInfoData
	PreChannels   []catalog.ChannelObject
	ChargingState *catalog.ChargingState
	BatteryLevel  *int
}

// NewDevice creates a freshly discovered device with no known fields set.
func NewDevice(id string, addr net.IP) Device {
	return Device{ID: id, Addr: addr}
}

// Clone returns a copy for handing to subscribers. The top-level pointer
// fields and the PreChannels slice are copied; the optional fields inside
// PlayInfo and inside each PreChannels entry are pointers shared with the
// original.
func (d Device) Clone() Device {
	clone := d
	if d.Name != nil {
		name := *d.Name
		clone.Name = &name
	}
	if d.Volume != nil {
		v := *d.Volume
		clone.Volume = &v
	}
	if d.PlayStatus != nil {
		ps := *d.PlayStatus
		clone.PlayStatus = &ps
	}
	if d.PlayInfo != nil {
		pi := *d.PlayInfo
		clone.PlayInfo = &pi
	}
	if d.PreChannels != nil {
		clone.PreChannels = append([]catalog.ChannelObject(nil), d.PreChannels...)
	}
	if d.ChargingState != nil {
		cs := *d.ChargingState
		clone.ChargingState = &cs
	}
	if d.BatteryLevel != nil {
		bl := *d.BatteryLevel
		clone.BatteryLevel = &bl
	}
	return clone
}

// Table maps device id to its current record. Lookups by id are O(1);
// LookupByAddr is a linear scan used to route inbound packets, which carry
// no device id, only the sender's IP.
type Table struct {
	byID map[string]*Device
}

// NewTable creates an empty device table.
func NewTable() *Table {
	return &Table{byID: make(map[string]*Device)}
}

// Register inserts device if its id is new, returning true when it was
// actually inserted (the caller uses this to decide whether to emit
// DeviceDiscovered).
func (t *Table) Register(d Device) bool {
	if _, exists := t.byID[d.ID]; exists {
		return false
	}
	copy := d
	t.byID[d.ID] = &copy
	return true
}

// Get returns the device with id, if present.
func (t *Table) Get(id string) (*Device, bool) {
	d, ok := t.byID[id]
	return d, ok
}

// LookupByAddr finds the (at most one, by protocol assumption) device
// whose Addr equals addr. On a LAN where one device owns one address this
// is correct; if two devices share an address, updates are misrouted —
// an acknowledged limitation of the source protocol, which carries no
// device id on the wire.
func (t *Table) LookupByAddr(addr net.IP) (*Device, bool) {
	for _, d := range t.byID {
		if d.Addr.Equal(addr) {
			return d, true
		}
	}
	return nil, false
}
