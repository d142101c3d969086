package classify

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	contractx "github.com/nimbushome/support-agent/agent/contract"
)

// Known room names. Location matching runs over this gazetteer only; free
// text never becomes a location.
var Locations = []string{
	"living room", "dining room", "bedroom", "kitchen", "bathroom", "office",
	"garage", "hallway", "basement", "attic", "nursery", "den", "patio",
}

var deviceWords = []string{
	"speaker", "lights", "light", "lamp", "thermostat", "television", "tv",
	"camera", "plug", "doorbell", "display",
}

/* ------------------------------ slot types ------------------------------ */

type StatusSlots struct {
	DeviceHint string `json:"device_hint,omitempty"`
	Location   string `json:"location,omitempty"`
}

func (StatusSlots) RequestType() string { return string(TypeDeviceStatus) }

type PowerSlots struct {
	TargetState contractx.PowerState `json:"target_state,omitempty"`
	DeviceHint  string               `json:"device_hint,omitempty"`
	Location    string               `json:"location,omitempty"`
}

func (PowerSlots) RequestType() string { return string(TypeDevicePower) }

const (
	VolumeUp   = "up"
	VolumeDown = "down"
	VolumeSet  = "set"
)

type VolumeSlots struct {
	Direction string `json:"volume_direction"`
	Level     int    `json:"volume_level,omitempty"`
	HasLevel  bool   `json:"-"`
}

func (VolumeSlots) RequestType() string { return string(TypeVolumeControl) }

const (
	SongNext     = "next"
	SongPrevious = "previous"
	SongPlay     = "play"
)

type SongSlots struct {
	Action        string `json:"song_action"`
	RequestedSong string `json:"requested_song,omitempty"`
}

func (SongSlots) RequestType() string { return string(TypeSongChanges) }

type RelocationSlots struct {
	Source        string `json:"source,omitempty"`
	Destination   string `json:"destination,omitempty"`
	PlacementOnly bool   `json:"placement_only,omitempty"`
	DeviceHint    string `json:"device_hint,omitempty"`
}

func (RelocationSlots) RequestType() string { return string(TypeDeviceRelocation) }

type MultiRoomSlots struct {
	AllRooms   bool     `json:"all_rooms,omitempty"`
	Locations  []string `json:"locations,omitempty"`
	DeviceType string   `json:"device_type,omitempty"`
}

func (MultiRoomSlots) RequestType() string { return string(TypeMultiRoomSetup) }

const (
	TriggerTime  = "time"
	TriggerEvent = "event"
)

type RoutineSlots struct {
	Name        string   `json:"routine_name,omitempty"`
	TriggerType string   `json:"trigger_type,omitempty"`
	Trigger     string   `json:"trigger,omitempty"`
	Actions     []string `json:"actions,omitempty"`
	Devices     []string `json:"devices,omitempty"`
	Locations   []string `json:"locations,omitempty"`
}

func (RoutineSlots) RequestType() string { return string(TypeCustomRoutine) }

/* ------------------------------ extractors ------------------------------ */

func extractStatus(text string) (contractx.Slots, bool) {
	return StatusSlots{
		DeviceHint: firstDeviceWord(text),
		Location:   firstLocation(text),
	}, true
}

func extractPower(text string) (contractx.Slots, bool) {
	slots := PowerSlots{
		DeviceHint: firstDeviceWord(text),
		Location:   firstLocation(text),
	}
	switch {
	case containsAny(text, []string{"turn off", "switch off", "power off", "shut down"}):
		slots.TargetState = contractx.PowerOff
	case containsAny(text, []string{"turn on", "switch on", "power on"}):
		slots.TargetState = contractx.PowerOn
	}
	return slots, true
}

var (
	explicitVolumePattern = regexp.MustCompile(`\b(\d{1,3})\s*(?:%|percent)\b`)
	volumeToPattern       = regexp.MustCompile(`\b(?:to|at)\s+(\d{1,3})\b`)
)

var wordNumbers = []struct {
	word  string
	level int
}{
	{"hundred", 100}, {"maximum", 100}, {"max", 100}, {"full", 100},
	{"ninety", 90}, {"eighty", 80}, {"seventy", 70}, {"sixty", 60},
	{"fifty", 50}, {"half", 50}, {"forty", 40}, {"thirty", 30},
	{"twenty", 20}, {"ten", 10}, {"zero", 0},
}

func extractVolume(text string) (contractx.Slots, bool) {
	if level, ok := explicitVolumeLevel(text); ok {
		return VolumeSlots{Direction: VolumeSet, Level: level, HasLevel: true}, true
	}
	for _, wn := range wordNumbers {
		if containsWord(text, wn.word) {
			return VolumeSlots{Direction: VolumeSet, Level: wn.level, HasLevel: true}, true
		}
	}
	if strings.Contains(text, "mute") {
		return VolumeSlots{Direction: VolumeSet, Level: 0, HasLevel: true}, true
	}
	if containsAny(text, []string{"down", "quieter", "lower", "decrease", "softer", "reduce"}) {
		return VolumeSlots{Direction: VolumeDown}, true
	}
	// Default direction: a volume request with no level and no downward word
	// is a request to raise it.
	return VolumeSlots{Direction: VolumeUp}, true
}

func explicitVolumeLevel(text string) (int, bool) {
	for _, pattern := range []*regexp.Regexp{explicitVolumePattern, volumeToPattern} {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		level, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if level > 100 {
			level = 100
		}
		return level, true
	}
	return 0, false
}

var namedSongPattern = regexp.MustCompile(`\b(?:play|put on)\s+(?:the\s+song\s+|the\s+track\s+)?(.+?)(?:\s+on\s+the\s+\w+)?[.!?]*$`)

var genericSongWords = map[string]bool{
	"music": true, "some music": true, "a song": true, "something": true,
	"songs": true, "it": true,
}

func extractSong(text string) (contractx.Slots, bool) {
	// Next/previous phrasing takes priority even inside "play the next ...".
	if containsAny(text, []string{"previous", "go back", "last song", "last track"}) {
		return SongSlots{Action: SongPrevious}, true
	}
	if containsAny(text, []string{"next", "skip"}) {
		return SongSlots{Action: SongNext}, true
	}

	if m := namedSongPattern.FindStringSubmatch(text); m != nil {
		name := strings.TrimSpace(m[1])
		name = strings.TrimPrefix(name, "the ")
		// A captured "name" holding next/previous is a misread command, not
		// a title.
		if name != "" && !strings.Contains(name, "next") && !strings.Contains(name, "previous") && !genericSongWords[name] {
			return SongSlots{Action: SongPlay, RequestedSong: name}, true
		}
	}

	if containsAny(text, []string{"change", "different", "another"}) {
		return SongSlots{Action: SongNext}, true
	}

	// Keyword scoring picked the type but no actionable request is present;
	// the classification is invalidated.
	return nil, false
}

func extractRelocation(text string) (contractx.Slots, bool) {
	slots := RelocationSlots{DeviceHint: firstDeviceWord(text)}

	for _, loc := range Locations {
		if slots.Source == "" && containsAny(text, []string{"from the " + loc, "from " + loc}) {
			slots.Source = loc
		}
		if slots.Destination == "" && containsAny(text, []string{"to the " + loc, "into the " + loc, "to " + loc}) {
			slots.Destination = loc
		}
	}

	switch {
	case slots.Source == "" && slots.Destination != "":
		slots.PlacementOnly = true
	case slots.Source == "" && slots.Destination == "":
		// No from/to phrasing at all: take the first known room as the
		// destination.
		if loc := firstLocation(text); loc != "" {
			slots.Destination = loc
			slots.PlacementOnly = true
		}
	}
	return slots, true
}

func extractMultiRoom(text string) (contractx.Slots, bool) {
	slots := MultiRoomSlots{
		AllRooms:   containsAny(text, []string{"all rooms", "every room", "whole house", "everywhere"}),
		DeviceType: firstDeviceWord(text),
	}
	for _, loc := range Locations {
		if strings.Contains(text, loc) {
			slots.Locations = append(slots.Locations, loc)
		}
	}
	return slots, true
}

var (
	routineNamePattern = regexp.MustCompile(`(?:called|named)\s+"?([a-z0-9][a-z0-9' ]*?)"?(?:\s+(?:that|which|to|when|at)\b|[.,!?]|$)`)
	routineTimePattern = regexp.MustCompile(`\b(?:at|around)\s+(\d{1,2}(?::\d{2})?\s*(?:am|pm)?)\b`)
)

var routineEventPhrases = []string{
	"when i arrive", "when i get home", "when i leave", "when i wake up",
	"when the door", "when motion", "when the sun",
}

var routineActionTable = map[string]string{
	"turn on":  "power_on",
	"turn off": "power_off",
	"dim":      "dim_lights",
	"play":     "play_music",
	"lock":     "lock_doors",
	"unlock":   "unlock_doors",
	"set the temperature": "set_temperature",
}

func extractRoutine(text string) (contractx.Slots, bool) {
	slots := RoutineSlots{}

	if m := routineNamePattern.FindStringSubmatch(text); m != nil {
		slots.Name = strings.TrimSpace(m[1])
	}

	switch {
	case containsAny(text, routineEventPhrases):
		slots.TriggerType = TriggerEvent
		for _, phrase := range routineEventPhrases {
			if strings.Contains(text, phrase) {
				slots.Trigger = phrase
				break
			}
		}
	case routineTimePattern.MatchString(text):
		slots.TriggerType = TriggerTime
		slots.Trigger = strings.TrimSpace(routineTimePattern.FindStringSubmatch(text)[1])
	case containsAny(text, []string{"every morning", "every night", "every day", "every evening"}):
		slots.TriggerType = TriggerTime
		for _, phrase := range []string{"every morning", "every night", "every day", "every evening"} {
			if strings.Contains(text, phrase) {
				slots.Trigger = phrase
				break
			}
		}
	}

	for keyword, action := range routineActionTable {
		if containsWord(text, keyword) {
			slots.Actions = append(slots.Actions, action)
		}
	}
	sort.Strings(slots.Actions)

	for _, w := range deviceWords {
		if strings.Contains(text, w) {
			slots.Devices = append(slots.Devices, w)
		}
	}
	for _, loc := range Locations {
		if strings.Contains(text, loc) {
			slots.Locations = append(slots.Locations, loc)
		}
	}
	// Missing fields stay empty; nothing is fabricated.
	return slots, true
}

/* -------------------------------- helpers ------------------------------- */

func firstLocation(text string) string {
	best := ""
	bestIdx := -1
	for _, loc := range Locations {
		idx := strings.Index(text, loc)
		if idx >= 0 && (bestIdx < 0 || idx < bestIdx) {
			best = loc
			bestIdx = idx
		}
	}
	return best
}

func firstDeviceWord(text string) string {
	best := ""
	bestIdx := -1
	for _, w := range deviceWords {
		idx := strings.Index(text, w)
		if idx >= 0 && (bestIdx < 0 || idx < bestIdx) {
			best = w
			bestIdx = idx
		}
	}
	return best
}

var wordPatternCache sync.Map

// containsWord reports whether text contains phrase on word boundaries, so
// "ten" never matches inside "listen".
func containsWord(text, phrase string) bool {
	if cached, ok := wordPatternCache.Load(phrase); ok {
		return cached.(*regexp.Regexp).MatchString(text)
	}
	pattern := regexp.MustCompile(`\b` + regexp.QuoteMeta(phrase) + `\b`)
	wordPatternCache.Store(phrase, pattern)
	return pattern.MatchString(text)
}
