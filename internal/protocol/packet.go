// Package protocol implements the binary wire codec for the speaker
// command packet: a 10-byte header followed by an optional payload.
package protocol

import (
	"github.com/abustany/libratone-go/internal/xerrors"
)

// Fixed UDP ports used across the three-port protocol.
const (
	CommandSendPort  = 7777 // outbound command port on the device
	CommandReplyPort = 7778 // inbound command-reply port on the controller
	NotifyRecvPort   = 3333 // inbound notification port on the controller
	NotifyAckPort    = 3334 // outbound notification-ack port on the device
	DiscoveryPort    = 1800 // vendor discovery multicast port (NOT IANA 1900)
)

// MulticastAddr is the group address devices listen on for discovery.
const MulticastAddr = "239.255.255.250"

const (
	headerLen  = 10
	magicByte0 = 0xAA
	magicByte1 = 0xAA
	// reservedByte0/1 are written by the encoder and ignored by the parser.
	reservedByte0 = 0x12
	reservedByte1 = 0x34
	maxPayload    = 65525 // 65535 byte datagram minus the 10-byte header
)

// Command types.
const (
	CommandTypeFetch uint8 = 1
	CommandTypeSet   uint8 = 2
)

// Packet is the parsed form of a wire frame. CommandData is nil when the
// frame carried no payload.
type Packet struct {
	CommandType uint8
	Command     uint16
	CommandData []byte
}

// Parse decodes a wire frame. It fails with ShortFrameError when fewer than
// 10 bytes are present, and LengthMismatchError when the declared length
// plus the header does not equal len(data).
func Parse(data []byte) (Packet, error) {
	if len(data) < headerLen {
		return Packet{}, xerrors.NewShortFrameError("protocol.Parse", len(data))
	}

	declared := int(data[8])<<8 | int(data[9])
	if headerLen+declared != len(data) {
		return Packet{}, xerrors.NewLengthMismatchError("protocol.Parse", declared, len(data)-headerLen)
	}

	p := Packet{
		CommandType: data[2],
		Command:     uint16(data[3])<<8 | uint16(data[4]),
	}
	if declared > 0 {
		p.CommandData = append([]byte(nil), data[headerLen:]...)
	}
	return p, nil
}

// Encode serializes a packet to its wire form. It always succeeds; the
// reserved status and nonce bytes are fixed constants and are not
// represented in Packet, so Parse(Encode(p)) round-trips only
// (CommandType, Command, CommandData).
func Encode(p Packet) []byte {
	dataLen := len(p.CommandData)
	buf := make([]byte, headerLen+dataLen)
	buf[0] = magicByte0
	buf[1] = magicByte1
	buf[2] = p.CommandType
	buf[3] = byte(p.Command >> 8)
	buf[4] = byte(p.Command)
	buf[5] = 0x00 // status, parser does not validate
	buf[6] = reservedByte0
	buf[7] = reservedByte1
	buf[8] = byte(dataLen >> 8)
	buf[9] = byte(dataLen)
	copy(buf[headerLen:], p.CommandData)
	return buf
}

// Ack builds the minimal acknowledgement packet sent to NotifyAckPort in
// response to a notification: the same command type, command fixed at 2,
// and no payload.
func Ack(notification Packet) Packet {
	return Packet{CommandType: notification.CommandType, Command: 2}
}

// Hello builds the optional client greeting packet devices accept on the
// command port: command_type=2, command=3, payload "<ourIP>,3333".
func Hello(ourIP string) Packet {
	return Packet{
		CommandType: CommandTypeSet,
		Command:     3,
		CommandData: []byte(ourIP + "," + itoa(NotifyRecvPort)),
	}
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
