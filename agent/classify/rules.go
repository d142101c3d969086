package classify

import "strings"

// Rule is one ordered scoring adjustment: a predicate over the lowercased
// utterance and an effect on the per-type score table. Rules run after base
// keyword scoring, in declaration order; later rules may override earlier
// ones.
type Rule struct {
	Name  string
	When  func(text string) bool
	Apply func(scores map[RequestType]int)
}

var songWords = []string{"song", "track", "music"}

var songChangeVerbs = []string{
	"next", "previous", "skip", "change", "different", "another", "play",
}

// AdjustmentRules is the canonical rule table. Every branch that used to be
// an inline conditional in scoring lives here so each rule is testable on
// its own.
var AdjustmentRules = []Rule{
	{
		// "turn up the volume" must never read as a power command.
		Name: "volume_phrase_zeroes_power",
		When: func(text string) bool { return strings.Contains(text, "volume") },
		Apply: func(scores map[RequestType]int) {
			scores[TypeDevicePower] = 0
		},
	},
	{
		Name: "song_words_boost_song_changes",
		When: func(text string) bool { return containsAny(text, songWords) },
		Apply: func(scores map[RequestType]int) {
			scores[TypeSongChanges] += 2
		},
	},
	{
		// "play the next track" shares "turn up"-adjacent verbs with volume
		// control; a song word plus a change verb settles it.
		Name: "song_change_zeroes_volume",
		When: func(text string) bool {
			return containsAny(text, songWords) && containsAny(text, songChangeVerbs)
		},
		Apply: func(scores map[RequestType]int) {
			scores[TypeVolumeControl] = 0
		},
	},
	{
		// Routine descriptions embed power verbs ("every morning turn on the
		// lights"); the routine wording is authoritative.
		Name: "routine_words_override_power",
		When: func(text string) bool {
			return containsAny(text, []string{"routine", "automation", "automate", "schedule", "scene"})
		},
		Apply: func(scores map[RequestType]int) {
			scores[TypeCustomRoutine] += 2
			scores[TypeDevicePower] = 0
		},
	},
	{
		Name: "whole_house_boosts_multi_room",
		When: func(text string) bool {
			return containsAny(text, []string{"all rooms", "every room", "whole house", "everywhere"})
		},
		Apply: func(scores map[RequestType]int) {
			scores[TypeMultiRoomSetup] += 2
		},
	},
	{
		// "turn up the music" is volume control: a loudness direction with no
		// change verb wins over the song-word boost.
		Name: "loudness_direction_without_change_verb_zeroes_song",
		When: func(text string) bool {
			direction := containsAny(text, []string{
				"turn up", "turn down", "louder", "quieter", "volume up", "volume down",
			})
			return direction && !containsAny(text, songChangeVerbs)
		},
		Apply: func(scores map[RequestType]int) {
			scores[TypeSongChanges] = 0
		},
	},
	{
		// "set the volume to the max" matches "to the"; relocation needs an
		// actual movement verb.
		Name: "relocation_requires_movement_verb",
		When: func(text string) bool {
			return !containsAny(text, []string{"move", "moving", "relocate", "put", "bring"})
		},
		Apply: func(scores map[RequestType]int) {
			scores[TypeDeviceRelocation] = 0
		},
	},
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
