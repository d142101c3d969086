package contract

import (
	"fmt"
	"time"
)

type PowerState string

const (
	PowerOn  PowerState = "on"
	PowerOff PowerState = "off"
)

// Device is owned by exactly one Customer record. Devices are embedded in the
// customer, never addressed as standalone entities.
type Device struct {
	ID               string     `json:"id"`
	Type             string     `json:"type"`
	Location         string     `json:"location"`
	Power            PowerState `json:"power"`
	Volume           *int       `json:"volume,omitempty"`
	Playlist         []string   `json:"playlist,omitempty"`
	CurrentSongIndex int        `json:"current_song_index"`
}

// Validate enforces the playlist index invariant: whenever a playlist exists,
// 0 <= CurrentSongIndex < len(Playlist).
func (d *Device) Validate() error {
	if d == nil {
		return fmt.Errorf("%w: device is nil", ErrValidation)
	}
	if d.Volume != nil && (*d.Volume < 0 || *d.Volume > 100) {
		return fmt.Errorf("%w: device %s volume out of range: %d", ErrValidation, d.ID, *d.Volume)
	}
	if len(d.Playlist) > 0 && (d.CurrentSongIndex < 0 || d.CurrentSongIndex >= len(d.Playlist)) {
		return fmt.Errorf("%w: device %s song index out of range: %d", ErrValidation, d.ID, d.CurrentSongIndex)
	}
	return nil
}

// CurrentSong returns the playing track title, if the device has a playlist.
func (d *Device) CurrentSong() (string, bool) {
	if d == nil || len(d.Playlist) == 0 {
		return "", false
	}
	if d.CurrentSongIndex < 0 || d.CurrentSongIndex >= len(d.Playlist) {
		return "", false
	}
	return d.Playlist[d.CurrentSongIndex], true
}

type Customer struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Tier    string   `json:"tier"`
	Devices []Device `json:"devices,omitempty"`
}

// Tier is a flat set of allowed actions. There is no inheritance between
// tiers; a higher tier restates every action it permits.
type Tier struct {
	Name           string   `json:"name"`
	AllowedActions []string `json:"allowed_actions"`
}

func (t Tier) Allows(action string) bool {
	for _, a := range t.AllowedActions {
		if a == action {
			return true
		}
	}
	return false
}

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// ConversationTurn is one persisted message. Turns are append-only: created
// once by the orchestrator, never mutated afterwards.
type ConversationTurn struct {
	ID               string    `json:"id"`
	ConversationID   string    `json:"conversation_id"`
	CustomerID       string    `json:"customer_id"`
	Sender           Sender    `json:"sender"`
	Text             string    `json:"text"`
	Timestamp        time.Time `json:"timestamp"`
	RequestType      string    `json:"request_type,omitempty"`
	ActionsAllowed   *bool     `json:"actions_allowed,omitempty"`
	GenerationFailed bool      `json:"generation_failed,omitempty"`
}

// TurnResult is the orchestrator's reply for one handled utterance.
type TurnResult struct {
	Message        string    `json:"message"`
	ConversationID string    `json:"conversation_id"`
	MessageID      string    `json:"message_id"`
	CustomerID     string    `json:"customer_id"`
	Timestamp      time.Time `json:"timestamp"`
	RequestType    string    `json:"request_type,omitempty"`
	ActionsAllowed *bool     `json:"actions_allowed,omitempty"`
}

// ActionOutcome describes a mutation an executor performed (or attempted) on
// behalf of a permitted request. The decision core itself never mutates
// device state.
type ActionOutcome struct {
	Action      string `json:"action"`
	DeviceID    string `json:"device_id,omitempty"`
	Description string `json:"description"`
	NewVolume   *int   `json:"new_volume,omitempty"`
	NewSong     string `json:"new_song,omitempty"`
	NewLocation string `json:"new_location,omitempty"`
}
