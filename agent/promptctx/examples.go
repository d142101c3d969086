package promptctx

import (
	classifyx "github.com/nimbushome/support-agent/agent/classify"
)

// Example is a static reference snippet steering the generator's tone for
// one (request type, allowed|denied) bucket. These are reference material,
// never computed.
type Example struct {
	RequestType string `json:"request_type"`
	Allowed     bool   `json:"allowed"`
	Snippet     string `json:"snippet"`
}

var exampleSnippets = map[classifyx.RequestType]map[bool][]string{
	classifyx.TypeDeviceStatus: {
		true: {
			"Your living room speaker is on and playing at volume 40.",
		},
		false: {
			"I can't pull up device details on your current plan, but I'd be happy to help once it's upgraded.",
		},
	},
	classifyx.TypeDevicePower: {
		true: {
			"Done! The bedroom lamp is now off.",
		},
		false: {
			"Switching devices on and off isn't included in your plan yet.",
		},
	},
	classifyx.TypeVolumeControl: {
		true: {
			"I've turned the volume up to 60 for you.",
			"Volume is now set to 50 percent on the kitchen speaker.",
		},
		false: {
			"I wasn't able to change the volume — that's a Premium feature. I can still check the speaker's status for you.",
		},
	},
	classifyx.TypeSongChanges: {
		true: {
			"Skipping ahead — now playing the next track on your playlist.",
		},
		false: {
			"Changing songs needs the Premium plan, but I can check what's playing right now.",
		},
	},
	classifyx.TypeDeviceRelocation: {
		true: {
			"All set — the speaker is now registered to the bedroom.",
		},
		false: {
			"Moving devices between rooms isn't part of your current plan.",
		},
	},
	classifyx.TypeMultiRoomSetup: {
		true: {
			"Your speakers are now grouped and playing in sync across the house.",
		},
		false: {
			"Multi-room audio is an Elite feature. On your plan I can still control each speaker one at a time.",
		},
	},
	classifyx.TypeCustomRoutine: {
		true: {
			"Your \"Good Morning\" routine is saved and will run every day at 7am.",
		},
		false: {
			"Custom routines are only available on the Elite plan.",
		},
	},
}

// ExamplesFor returns the snippet bucket for a (type, allowed) pair.
func ExamplesFor(t classifyx.RequestType, allowed bool) []Example {
	byAllowed, ok := exampleSnippets[t]
	if !ok {
		return nil
	}
	snippets := byAllowed[allowed]
	out := make([]Example, 0, len(snippets))
	for _, s := range snippets {
		out = append(out, Example{
			RequestType: string(t),
			Allowed:     allowed,
			Snippet:     s,
		})
	}
	return out
}
