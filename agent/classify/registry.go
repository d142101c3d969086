package classify

import (
	contractx "github.com/nimbushome/support-agent/agent/contract"
)

type RequestType string

const (
	TypeDeviceStatus     RequestType = "device_status"
	TypeDevicePower      RequestType = "device_power"
	TypeVolumeControl    RequestType = "volume_control"
	TypeSongChanges      RequestType = "song_changes"
	TypeDeviceRelocation RequestType = "device_relocation"
	TypeMultiRoomSetup   RequestType = "multi_room_setup"
	TypeCustomRoutine    RequestType = "custom_routine"
)

// Action names match the request types they unlock; tiers list these strings
// in their allowed_actions set.
const (
	ActionDeviceStatus     = "device_status"
	ActionDevicePower      = "device_power"
	ActionVolumeControl    = "volume_control"
	ActionSongChanges      = "song_changes"
	ActionDeviceRelocation = "device_relocation"
	ActionMultiRoomSetup   = "multi_room_setup"
	ActionCustomRoutine    = "custom_routine"
)

// Spec declares one registered request type: the actions it needs, the
// keyword lexicon it is scored on, and its slot extractor. Extract receives
// lowercased text and reports false when extraction invalidates the
// classification.
type Spec struct {
	Type            RequestType
	RequiredActions []string
	Keywords        []string
	RequiresDevice  bool
	Extract         func(text string) (contractx.Slots, bool)
}

// Registry order doubles as the static tie-break priority: earlier wins.
var Registry = []Spec{
	{
		Type:            TypeDeviceStatus,
		RequiredActions: []string{ActionDeviceStatus},
		Keywords: []string{
			"status", "is my", "online", "working", "state of", "check on", "what is",
		},
		RequiresDevice: true,
		Extract:        extractStatus,
	},
	{
		Type:            TypeDevicePower,
		RequiredActions: []string{ActionDevicePower},
		Keywords: []string{
			"turn on", "turn off", "switch on", "switch off", "power on", "power off",
			"power", "shut down",
		},
		RequiresDevice: true,
		Extract:        extractPower,
	},
	{
		Type:            TypeVolumeControl,
		RequiredActions: []string{ActionVolumeControl},
		Keywords: []string{
			"volume", "volume up", "volume down", "turn up", "turn down",
			"louder", "quieter", "percent", "mute",
		},
		RequiresDevice: true,
		Extract:        extractVolume,
	},
	{
		Type:            TypeSongChanges,
		RequiredActions: []string{ActionSongChanges},
		Keywords: []string{
			"song", "track", "music", "play", "next song", "previous song",
			"skip", "playlist",
		},
		RequiresDevice: true,
		Extract:        extractSong,
	},
	{
		Type:            TypeDeviceRelocation,
		RequiredActions: []string{ActionDeviceRelocation},
		Keywords: []string{
			"move", "moving", "relocate", "put the", "bring the",
			"from the", "to the",
		},
		RequiresDevice: true,
		Extract:        extractRelocation,
	},
	{
		Type:            TypeMultiRoomSetup,
		RequiredActions: []string{ActionMultiRoomSetup, ActionDevicePower},
		Keywords: []string{
			"multi-room", "multiroom", "all rooms", "every room", "whole house",
			"group", "sync", "everywhere",
		},
		RequiresDevice: true,
		Extract:        extractMultiRoom,
	},
	{
		Type:            TypeCustomRoutine,
		RequiredActions: []string{ActionCustomRoutine},
		Keywords: []string{
			"routine", "automation", "automate", "schedule", "scene",
			"every morning", "every night", "when i",
		},
		RequiresDevice: false,
		Extract:        extractRoutine,
	},
}

// SpecFor returns the registered spec for a type.
func SpecFor(t RequestType) (Spec, bool) {
	for _, s := range Registry {
		if s.Type == t {
			return s, true
		}
	}
	return Spec{}, false
}

// RequiredActions returns the action list a request type needs.
func RequiredActions(t RequestType) []string {
	s, ok := SpecFor(t)
	if !ok {
		return nil
	}
	return append([]string(nil), s.RequiredActions...)
}
