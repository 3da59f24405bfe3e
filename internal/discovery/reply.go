// Package discovery parses the vendor's HTTP-NOTIFY-shaped multicast
// discovery datagram and provides a pluggable backend (discover/poll) for
// triggering and receiving discovery replies.
package discovery

import (
	"bytes"
	"net"
	"strconv"
	"strings"

	"github.com/abustany/libratone-go/internal/xerrors"
)

// brokenNotifyPrefix is the malformed start line some devices emit, with a
// stray trailing space before the CRLF. fixedNotifyPrefix is the
// well-formed equivalent we rewrite it to before parsing headers.
var (
	brokenNotifyPrefix = []byte("NOTIFY * HTTP/1.1 \r\n")
	fixedNotifyPrefix  = []byte("NOTIFY * HTTP/1.1\r\n")
)

// Reply is the parsed form of a discovery datagram.
type Reply struct {
	DeviceName      string
	DeviceID        string
	DeviceState     string
	Port            uint16
	ZoneID          string
	Creator         string
	IPAddr          net.IP
	ColorCode       string
	FirmwareVersion string
	StereoPairID    string
}

var requiredHeaders = []string{
	"DeviceName", "DeviceID", "DeviceState", "PORT", "ZoneID",
	"Creator", "IPAddr", "ColorCode", "FWVersion", "StereoPairID",
}

// Parse decodes a discovery datagram into a Reply. It strips the
// known trailing-space quirk from the start line, validates that the
// request line's method is NOTIFY and its target is "*" (the protocol
// version is not checked), and matches the ten required headers
// case-sensitively; unknown headers are ignored.
func Parse(data []byte) (Reply, error) {
	const op = "discovery.Parse"

	if bytes.HasPrefix(data, brokenNotifyPrefix) {
		fixed := make([]byte, 0, len(data)-len(brokenNotifyPrefix)+len(fixedNotifyPrefix))
		fixed = append(fixed, fixedNotifyPrefix...)
		fixed = append(fixed, data[len(brokenNotifyPrefix):]...)
		data = fixed
	}

	lines := strings.Split(string(data), "\r\n")
	if len(lines) == 0 {
		return Reply{}, xerrors.NewBadRequestLineError(op, "")
	}

	requestLine := lines[0]
	parts := strings.SplitN(requestLine, " ", 3)
	if len(parts) != 3 || parts[0] != "NOTIFY" || parts[1] != "*" {
		return Reply{}, xerrors.NewBadRequestLineError(op, requestLine)
	}

	headers := make(map[string]string, len(lines))
	for _, line := range lines[1:] {
		if line == "" {
			continue
		}
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		name := line[:idx]
		value := strings.TrimPrefix(line[idx+1:], " ")
		headers[name] = value
	}

	for _, name := range requiredHeaders {
		if _, ok := headers[name]; !ok {
			return Reply{}, xerrors.NewMissingHeaderError(op, name)
		}
	}

	port, err := strconv.ParseUint(headers["PORT"], 10, 16)
	if err != nil {
		return Reply{}, xerrors.NewDecodeError(op+": PORT", err)
	}

	ip := net.ParseIP(headers["IPAddr"])
	if ip == nil {
		return Reply{}, xerrors.NewDecodeError(op+": IPAddr", strconvError(headers["IPAddr"]))
	}

	return Reply{
		DeviceName:      headers["DeviceName"],
		DeviceID:        headers["DeviceID"],
		DeviceState:     headers["DeviceState"],
		Port:            uint16(port),
		ZoneID:          headers["ZoneID"],
		Creator:         headers["Creator"],
		IPAddr:          ip,
		ColorCode:       headers["ColorCode"],
		FirmwareVersion: headers["FWVersion"],
		StereoPairID:    headers["StereoPairID"],
	}, nil
}

type ipParseError string

func (e ipParseError) Error() string { return "invalid IP address literal: " + string(e) }

func strconvError(s string) error { return ipParseError(s) }
