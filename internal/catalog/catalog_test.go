package catalog

import (
	"testing"

	"github.com/abustany/libratone-go/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchBuildsFetchPacket(t *testing.T) {
	p := Fetch(KindVolume)
	assert.Equal(t, protocol.CommandTypeFetch, p.CommandType)
	assert.Equal(t, Table[KindVolume].GetCmdID, p.Command)
}

func TestSetUsesDistinctSetID(t *testing.T) {
	wire := EncodePlayControl(PlayControlPlay)
	p := Set(KindPlayControl, wire)
	assert.Equal(t, protocol.CommandTypeSet, p.CommandType)
	assert.Equal(t, uint16(40), p.Command, "PlayControl set id differs from its get id")
}

func TestSetPanicsWithoutSetID(t *testing.T) {
	assert.Panics(t, func() { Set(KindCapabilities, nil) })
}

func TestFormatReplyKnownAndUnknown(t *testing.T) {
	wire, err := EncodeVolume(42)
	require.NoError(t, err)
	p := protocol.Packet{CommandType: protocol.CommandTypeFetch, Command: Table[KindVolume].GetReplyID, CommandData: wire}
	got := FormatReply(p)
	assert.Contains(t, got, "Volume")
	assert.Contains(t, got, "42")

	unknown := protocol.Packet{Command: 9999}
	assert.Contains(t, FormatReply(unknown), "unknown reply")
}

func TestFormatNotification(t *testing.T) {
	p := protocol.Packet{CommandType: protocol.CommandTypeSet, Command: Table[KindBatteryLevel].NotifyID, CommandData: []byte("80")}
	got := FormatNotification(p)
	assert.Contains(t, got, "Battery level")
	assert.Contains(t, got, "80")
}
