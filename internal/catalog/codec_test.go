package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVolumeRoundTrip(t *testing.T) {
	for v := 0; v <= 100; v++ {
		data, err := EncodeVolume(v)
		require.NoError(t, err)
		got, err := DecodeVolume(data)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestVolumeEncodeRejectsOutOfRange(t *testing.T) {
	_, err := EncodeVolume(101)
	require.Error(t, err)
}

func TestVolumeWireForm(t *testing.T) {
	data, err := EncodeVolume(35)
	require.NoError(t, err)
	assert.Equal(t, "35", string(data))

	got, err := DecodeVolume([]byte("35"))
	require.NoError(t, err)
	assert.Equal(t, 35, got)
}

func TestPlayControlEncodeAllVerbs(t *testing.T) {
	verbs := []PlayControlVerb{
		PlayControlPlay, PlayControlStop, PlayControlPause, PlayControlNext,
		PlayControlPrevious, PlayControlToggle, PlayControlMute, PlayControlUnmute,
	}
	for _, v := range verbs {
		wire := EncodePlayControl(v)
		assert.NotEmpty(t, wire)
	}
}

func TestPlayControlDigitDecode(t *testing.T) {
	cases := map[byte]PlayControlVerb{
		'0': PlayControlPlay,
		'3': PlayControlNext,
		'5': PlayControlToggle,
		'7': PlayControlUnmute,
	}
	for digit, want := range cases {
		got, err := DecodePlayControl([]byte{digit})
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := DecodePlayControl([]byte{'8'})
	require.Error(t, err)
}

func TestChargingStateDigitDecode(t *testing.T) {
	cases := map[byte]ChargingState{
		'0': ChargingStateDischarging,
		'1': ChargingStatePluggedInCharging,
		'2': ChargingStatePluggedInCharged,
		'3': ChargingStatePluggedInNotCharging,
	}
	for digit, want := range cases {
		got, err := DecodeChargingState([]byte{digit})
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := DecodeChargingState([]byte{'4'})
	require.Error(t, err)
}

func TestDeviceNameRoundTrip(t *testing.T) {
	names := []string{"", "Living Room", "Büro Lautsprecher"}
	for _, n := range names {
		wire := EncodeDeviceName(n)
		got, err := DecodeDeviceName(wire)
		require.NoError(t, err)
		assert.Equal(t, n, got)
	}
}

func TestKindForReplyBatteryLevelAsymmetry(t *testing.T) {
	k, ok := KindForReply(257)
	require.True(t, ok)
	assert.Equal(t, KindBatteryLevel, k)

	_, ok = KindForReply(256)
	assert.False(t, ok, "256 is the GET id, not the reply id")
}

func TestKindForNotifyBatteryLevel(t *testing.T) {
	k, ok := KindForNotify(258)
	require.True(t, ok)
	assert.Equal(t, KindBatteryLevel, k)
}

func TestPreChannelDispatchedOnGetID(t *testing.T) {
	k, ok := KindForReply(275)
	require.True(t, ok)
	assert.Equal(t, KindPreChannel, k)
}

func TestPlayControlSetIDAsymmetry(t *testing.T) {
	assert.Equal(t, uint16(51), Table[KindPlayControl].GetCmdID)
	assert.Equal(t, uint16(40), Table[KindPlayControl].SetCmdID)
}

func TestPreChannelRoundTrip(t *testing.T) {
	id := "preset-1"
	ch := ChannelObject{
		ChannelID:   1,
		ChannelType: ChannelTypeSpotify,
		ChannelName: "Morning Mix",
		PlayToken:   &id,
	}
	wire, err := EncodePreChannel(ch)
	require.NoError(t, err)

	got, err := DecodePreChannel([]byte("[" + string(wire) + "]"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, ch.ChannelName, got[0].ChannelName)
	assert.Equal(t, ch.ChannelType, got[0].ChannelType)
}

func TestChannelObjectPlayInfoData(t *testing.T) {
	ch := ChannelObject{ChannelName: "Jazz FM", ChannelType: ChannelTypeTidal}
	info := ch.PlayInfoData()
	require.NotNil(t, info.PlayTitle)
	assert.Equal(t, "Jazz FM", *info.PlayTitle)
	require.NotNil(t, info.PlayType)
	assert.Equal(t, "tidal", *info.PlayType)
}
