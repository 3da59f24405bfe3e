package catalog

import (
	"encoding/json"
	"strconv"

	"github.com/abustany/libratone-go/internal/xerrors"
)

// EncodePower marshals a power request ("00" wake up, "02" sleep).
func EncodePower(s PowerState) []byte {
	if s == PowerSleep {
		return []byte("02")
	}
	return []byte("00")
}

// DecodeDeviceName unmarshals a DeviceName reply/set payload.
func DecodeDeviceName(data []byte) (string, error) {
	return string(data), nil
}

// EncodeDeviceName marshals a DeviceName set request.
func EncodeDeviceName(name string) []byte {
	return []byte(name)
}

// EncodeVolume marshals a Volume request. It fails with OutOfRangeError for
// values greater than 100.
func EncodeVolume(v int) ([]byte, error) {
	if v > 100 || v < 0 {
		return nil, xerrors.NewOutOfRangeError("catalog.EncodeVolume", v, 0, 100)
	}
	return []byte(strconv.Itoa(v)), nil
}

// DecodeVolume unmarshals a Volume reply/notification payload.
func DecodeVolume(data []byte) (int, error) {
	v, err := strconv.Atoi(string(data))
	if err != nil {
		return 0, xerrors.NewDecodeError("catalog.DecodeVolume", err)
	}
	return v, nil
}

var playControlVerbWire = map[PlayControlVerb]string{
	PlayControlPlay:     "PLAY",
	PlayControlStop:     "STOP",
	PlayControlPause:    "PAUSE",
	PlayControlNext:     "NEXT",
	PlayControlPrevious: "PREV",
	PlayControlToggle:   "TOGGL",
	PlayControlMute:     "MUTE",
	PlayControlUnmute:   "UNMUTE",
}

// EncodePlayControl marshals a PlayControl set request to its ASCII verb.
func EncodePlayControl(v PlayControlVerb) []byte {
	return []byte(playControlVerbWire[v])
}

// DecodePlayControl unmarshals a PlayControl reply/notification: a single
// ASCII digit, the 0-based index into the eight verbs.
func DecodePlayControl(data []byte) (PlayControlVerb, error) {
	if len(data) != 1 || data[0] < '0' || data[0] > '7' {
		return 0, xerrors.NewDecodeError("catalog.DecodePlayControl", errInvalidDigit(data))
	}
	return PlayControlVerb(data[0] - '0'), nil
}

// DecodePowerMode unmarshals a PowerMode reply/notification payload.
func DecodePowerMode(data []byte) (string, error) {
	return string(data), nil
}

// DecodeChargingState unmarshals a ChargingState reply/notification: a
// single ASCII digit 0..3.
func DecodeChargingState(data []byte) (ChargingState, error) {
	if len(data) != 1 || data[0] < '0' || data[0] > '3' {
		return 0, xerrors.NewDecodeError("catalog.DecodeChargingState", errInvalidDigit(data))
	}
	return ChargingState(data[0] - '0'), nil
}

// DecodeBatteryLevel unmarshals a BatteryLevel reply/notification payload.
func DecodeBatteryLevel(data []byte) (int, error) {
	v, err := strconv.Atoi(string(data))
	if err != nil {
		return 0, xerrors.NewDecodeError("catalog.DecodeBatteryLevel", err)
	}
	return v, nil
}

// DecodeFirmwareUpdate unmarshals a FirmwareUpdate reply/notification payload.
func DecodeFirmwareUpdate(data []byte) (string, error) {
	return string(data), nil
}

// EncodePlayInfo marshals a PlayInfo set request to JSON.
func EncodePlayInfo(d PlayInfoData) ([]byte, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, xerrors.NewDecodeError("catalog.EncodePlayInfo", err)
	}
	return data, nil
}

// DecodePlayInfo unmarshals a PlayInfo reply/notification JSON payload.
func DecodePlayInfo(data []byte) (PlayInfoData, error) {
	var d PlayInfoData
	if err := json.Unmarshal(data, &d); err != nil {
		return PlayInfoData{}, xerrors.NewDecodeError("catalog.DecodePlayInfo", err)
	}
	return d, nil
}

// DecodeCapabilities unmarshals a Capabilities reply JSON payload.
func DecodeCapabilities(data []byte) (CapabilitiesData, error) {
	var d CapabilitiesData
	if err := json.Unmarshal(data, &d); err != nil {
		return CapabilitiesData{}, xerrors.NewDecodeError("catalog.DecodeCapabilities", err)
	}
	return d, nil
}

// EncodePreChannel marshals a PreChannel set request to JSON.
func EncodePreChannel(ch ChannelObject) ([]byte, error) {
	data, err := json.Marshal(ch)
	if err != nil {
		return nil, xerrors.NewDecodeError("catalog.EncodePreChannel", err)
	}
	return data, nil
}

// DecodePreChannel unmarshals a PreChannel reply JSON array payload.
func DecodePreChannel(data []byte) ([]ChannelObject, error) {
	var chans []ChannelObject
	if err := json.Unmarshal(data, &chans); err != nil {
		return nil, xerrors.NewDecodeError("catalog.DecodePreChannel", err)
	}
	return chans, nil
}

type digitError string

func (e digitError) Error() string { return "invalid digit payload: " + string(e) }

func errInvalidDigit(data []byte) error { return digitError(data) }

// decodeForLog decodes data against kind purely for FormatReply/
// FormatNotification; it never mutates device state.
func decodeForLog(k Kind, data []byte) (any, error) {
	switch k {
	case KindPower:
		return "()", nil
	case KindPowerMode:
		return DecodePowerMode(data)
	case KindPlayControl:
		v, err := DecodePlayControl(data)
		if err != nil {
			return nil, err
		}
		return v.String(), nil
	case KindVolume:
		return DecodeVolume(data)
	case KindFirmwareUpdate:
		return DecodeFirmwareUpdate(data)
	case KindDeviceName:
		return DecodeDeviceName(data)
	case KindBatteryLevel:
		return DecodeBatteryLevel(data)
	case KindPreChannel:
		return DecodePreChannel(data)
	case KindPlayInfo:
		return DecodePlayInfo(data)
	case KindCapabilities:
		return DecodeCapabilities(data)
	case KindChargingState:
		v, err := DecodeChargingState(data)
		if err != nil {
			return nil, err
		}
		return v.String(), nil
	default:
		return string(data), nil
	}
}
