// Package catalog is the declarative registry of command kinds: for each
// kind, the numeric ids used on the wire for fetch, reply, set, and
// notification, plus a human-readable name for logging. Routing is a
// lookup on the numeric id rather than a type hierarchy, per the
// catalog's value-level-table design.
package catalog

import (
	"fmt"

	"github.com/abustany/libratone-go/internal/protocol"
)

// Kind identifies a command in the catalog.
type Kind int

const (
	KindHello Kind = iota
	KindPowerMode
	KindPower
	KindPlayControl
	KindVolume
	KindFirmwareUpdate
	KindDeviceName
	KindBatteryLevel
	KindPreChannel
	KindPlayInfo
	KindCapabilities
	KindChargingState
)

// Entry is one row of the catalog: the numeric id trio plus display name.
// GetReplyID defaults to GetCmdID when the reply shares the request id.
// SetCmdID and NotifyID are 0 when the kind has no set, resp. no notify.
type Entry struct {
	Kind       Kind
	Name       string
	GetCmdID   uint16
	GetReplyID uint16
	SetCmdID   uint16
	NotifyID   uint16
}

// Table is the full catalog, literal ids reproduced exactly for wire
// compatibility with the device firmware.
var Table = map[Kind]Entry{
	KindHello:          {Kind: KindHello, Name: "Hello", SetCmdID: 3},
	KindPowerMode:      {Kind: KindPowerMode, Name: "Power mode", GetCmdID: 14, GetReplyID: 14, NotifyID: 14},
	KindPower:          {Kind: KindPower, Name: "Power", GetCmdID: 15, GetReplyID: 15, SetCmdID: 15, NotifyID: 15},
	KindPlayControl:    {Kind: KindPlayControl, Name: "Play control", GetCmdID: 51, GetReplyID: 51, SetCmdID: 40, NotifyID: 51},
	KindVolume:         {Kind: KindVolume, Name: "Volume", GetCmdID: 64, GetReplyID: 64, SetCmdID: 64, NotifyID: 64},
	KindFirmwareUpdate: {Kind: KindFirmwareUpdate, Name: "FM Update", GetCmdID: 65, GetReplyID: 65, SetCmdID: 65, NotifyID: 65},
	KindDeviceName:     {Kind: KindDeviceName, Name: "Name", GetCmdID: 90, GetReplyID: 90, SetCmdID: 90},
	KindBatteryLevel:   {Kind: KindBatteryLevel, Name: "Battery level", GetCmdID: 256, GetReplyID: 257, NotifyID: 258},
	KindPreChannel:     {Kind: KindPreChannel, Name: "PreChannel", GetCmdID: 275, GetReplyID: 275, SetCmdID: 276},
	KindPlayInfo:       {Kind: KindPlayInfo, Name: "Play info", GetCmdID: 278, GetReplyID: 278, SetCmdID: 277, NotifyID: 278},
	KindCapabilities:   {Kind: KindCapabilities, Name: "Capabilities", GetCmdID: 281, GetReplyID: 281},
	KindChargingState:  {Kind: KindChargingState, Name: "Charging state", GetCmdID: 1284, GetReplyID: 1284, NotifyID: 1284},
}

var (
	byReplyID  = map[uint16]Kind{}
	byNotifyID = map[uint16]Kind{}
)

func init() {
	for k, e := range Table {
		if e.GetReplyID != 0 {
			byReplyID[e.GetReplyID] = k
		}
		if e.NotifyID != 0 {
			byNotifyID[e.NotifyID] = k
		}
	}
	// PreChannel has no distinct reply id; it is dispatched on its get id
	// (275), which already equals GetReplyID above — kept explicit here as
	// a reminder this is an intentional, not accidental, mapping.
	byReplyID[Table[KindPreChannel].GetCmdID] = KindPreChannel
}

// KindForReply returns the catalog kind whose GetReplyID matches command,
// and whether a match was found.
func KindForReply(command uint16) (Kind, bool) {
	k, ok := byReplyID[command]
	return k, ok
}

// KindForNotify returns the catalog kind whose NotifyID matches command,
// and whether a match was found.
func KindForNotify(command uint16) (Kind, bool) {
	k, ok := byNotifyID[command]
	return k, ok
}

// Fetch builds a fetch packet (command_type=1) for kind.
func Fetch(k Kind) protocol.Packet {
	e := Table[k]
	return protocol.Packet{CommandType: protocol.CommandTypeFetch, Command: e.GetCmdID}
}

// Set builds a set packet (command_type=2) for kind carrying the already
// encoded payload. Panics if the kind has no set id — a programming error.
func Set(k Kind, data []byte) protocol.Packet {
	e := Table[k]
	if e.SetCmdID == 0 {
		panic(fmt.Sprintf("catalog: kind %q has no set command", e.Name))
	}
	return protocol.Packet{CommandType: protocol.CommandTypeSet, Command: e.SetCmdID, CommandData: data}
}

// FormatReply renders a reply packet for human-readable logging, decoding
// it against its catalog entry when the id is recognized.
func FormatReply(p protocol.Packet) string {
	k, ok := KindForReply(p.Command)
	if !ok {
		return fmt.Sprintf("unknown reply %+v", p)
	}
	return formatWithDecoder(k, p)
}

// FormatNotification renders a notification packet for human-readable
// logging, decoding it against its catalog entry when the id is recognized.
func FormatNotification(p protocol.Packet) string {
	k, ok := KindForNotify(p.Command)
	if !ok {
		return fmt.Sprintf("unknown notification %+v", p)
	}
	return formatWithDecoder(k, p)
}

func formatWithDecoder(k Kind, p protocol.Packet) string {
	e := Table[k]
	kind := "fetch"
	if p.CommandType == protocol.CommandTypeSet {
		kind = "set"
	}
	decoded, err := decodeForLog(k, p.CommandData)
	if err != nil {
		return fmt.Sprintf("%s %s <decode error: %v>", kind, e.Name, err)
	}
	return fmt.Sprintf("%s %s %v", kind, e.Name, decoded)
}
