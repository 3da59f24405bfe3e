package catalog

// PowerState is the request payload for Power.Set.
type PowerState int

const (
	PowerWakeUp PowerState = iota
	PowerSleep
)

// PlayControlVerb is both the request payload for PlayControl.Set and the
// decoded form of a PlayControl reply/notification.
type PlayControlVerb int

const (
	PlayControlPlay PlayControlVerb = iota
	PlayControlStop
	PlayControlPause
	PlayControlNext
	PlayControlPrevious
	PlayControlToggle
	PlayControlMute
	PlayControlUnmute
)

func (v PlayControlVerb) String() string {
	switch v {
	case PlayControlPlay:
		return "Play"
	case PlayControlStop:
		return "Stop"
	case PlayControlPause:
		return "Pause"
	case PlayControlNext:
		return "Next"
	case PlayControlPrevious:
		return "Previous"
	case PlayControlToggle:
		return "Toggle"
	case PlayControlMute:
		return "Mute"
	case PlayControlUnmute:
		return "Unmute"
	default:
		return "Unknown"
	}
}

// ChargingState is the decoded form of a ChargingState reply/notification.
type ChargingState int

const (
	ChargingStateDischarging ChargingState = iota
	ChargingStatePluggedInCharging
	ChargingStatePluggedInCharged
	ChargingStatePluggedInNotCharging
)

func (c ChargingState) String() string {
	switch c {
	case ChargingStateDischarging:
		return "Discharging"
	case ChargingStatePluggedInCharging:
		return "PluggedInCharging"
	case ChargingStatePluggedInCharged:
		return "PluggedInCharged"
	case ChargingStatePluggedInNotCharging:
		return "PluggedInNotCharging"
	default:
		return "Unknown"
	}
}

// PlayInfoData describes what a device is currently playing.
type PlayInfoData struct {
	IsFromChannel       bool    `json:"isFromChannel"`
	PlayAlbum           *string `json:"play_album,omitempty"`
	PlayAlbumURI        *string `json:"play_album_uri,omitempty"`
	PlayArtist          *string `json:"play_artist,omitempty"`
	PlayAttribution     *string `json:"play_attribution,omitempty"`
	PlayIdentity        *string `json:"play_identity,omitempty"`
	PlayObject          *string `json:"play_object,omitempty"`
	PlayPic             *string `json:"play_pic,omitempty"`
	PlayPresetAvailable *int32  `json:"play_preset_available,omitempty"`
	PlaySubtitle        *string `json:"play_subtitle,omitempty"`
	PlayTitle           *string `json:"play_title,omitempty"`
	PlayType            *string `json:"play_type,omitempty"`
	PlayUsername        *string `json:"play_username,omitempty"`
	PlayToken           *string `json:"play_token,omitempty"`
}

// Capability is one advertised device feature.
type Capability struct {
	Name string `json:"name"`
}

// CapabilitiesData is the decoded Capabilities reply payload.
type CapabilitiesData struct {
	Capabilities []Capability `json:"capabilities"`
}

// ChannelType enumerates the streaming backends a pre-channel can address.
type ChannelType string

const (
	ChannelTypeVTuner   ChannelType = "vtuner"
	ChannelTypeXMLY     ChannelType = "xmly"
	ChannelTypeDoubanFM ChannelType = "doubanfm"
	ChannelTypeSpotify  ChannelType = "spotify"
	ChannelTypeKaishu   ChannelType = "kaishu"
	ChannelTypeDeezer   ChannelType = "deezer"
	ChannelTypeTidal    ChannelType = "tidal"
	ChannelTypeNapster  ChannelType = "napster"
)

// ChannelObject is a device-side preset (radio station, playlist, …).
type ChannelObject struct {
	IsPlaying       *bool       `json:"isPlaying,omitempty"`
	ChannelID       int64       `json:"channel_id"`
	ChannelType     ChannelType `json:"channel_type"`
	ChannelName     string      `json:"channel_name"`
	ChannelIdentity *string     `json:"channel_identity,omitempty"`
	StationURL      *string     `json:"station_url,omitempty"`
	PictureURL      *string     `json:"picture_url,omitempty"`
	Username        *string     `json:"username,omitempty"`
	Password        *string     `json:"password,omitempty"`
	PlayToken       *string     `json:"play_token,omitempty"`
}

// PlayInfoData projects a pre-channel entry into a play-info payload, for
// callers that want to start playing a preset and immediately populate the
// "now playing" view from it.
func (c ChannelObject) PlayInfoData() PlayInfoData {
	channelType := string(c.ChannelType)
	return PlayInfoData{
		PlayTitle:    &c.ChannelName,
		PlaySubtitle: &c.ChannelName,
		PlayType:     &channelType,
		PlayIdentity: c.ChannelIdentity,
		PlayToken:    c.PlayToken,
	}
}
