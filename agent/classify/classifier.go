// Package classify maps raw customer utterances to a request type and
// extracts the structured slots that type declares. Classification is
// deterministic keyword scoring over the registry lexicons plus an ordered
// adjustment-rule table; no model call is involved.
package classify

import (
	"strings"

	contractx "github.com/nimbushome/support-agent/agent/contract"
)

// Result is produced fresh per call and never cached or shared.
type Result struct {
	Type  RequestType
	Slots contractx.Slots
}

// Classify returns the winning request type and its slots. The second return
// is false when the utterance is unclassifiable: either every score is zero,
// or the winner's slot extraction invalidated the classification.
func Classify(text string) (Result, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return Result{}, false
	}

	scores := baseScores(lower)
	for _, rule := range AdjustmentRules {
		if rule.When(lower) {
			rule.Apply(scores)
		}
	}

	winner, ok := pickWinner(lower, scores)
	if !ok {
		return Result{}, false
	}

	spec, ok := SpecFor(winner)
	if !ok {
		return Result{}, false
	}
	slots, ok := spec.Extract(lower)
	if !ok {
		return Result{}, false
	}

	return Result{Type: winner, Slots: slots}, true
}

// ExtractSlots runs a specific type's extractor directly.
func ExtractSlots(text string, t RequestType) (contractx.Slots, bool) {
	spec, ok := SpecFor(t)
	if !ok {
		return nil, false
	}
	return spec.Extract(strings.ToLower(strings.TrimSpace(text)))
}

// baseScores sums lexicon hits per type: multi-word phrases and exact
// full-text matches weigh 2, single words weigh 1.
func baseScores(lower string) map[RequestType]int {
	scores := make(map[RequestType]int, len(Registry))
	for _, spec := range Registry {
		total := 0
		for _, kw := range spec.Keywords {
			if !strings.Contains(lower, kw) {
				continue
			}
			if strings.Contains(kw, " ") || kw == lower {
				total += 2
			} else {
				total++
			}
		}
		scores[spec.Type] = total
	}
	return scores
}

// Domain keywords used for the first tie-break stage.
var domainTieBreaks = []struct {
	word string
	t    RequestType
}{
	{"power", TypeDevicePower},
	{"volume", TypeVolumeControl},
	{"song", TypeSongChanges},
}

func pickWinner(lower string, scores map[RequestType]int) (RequestType, bool) {
	max := 0
	for _, spec := range Registry {
		if scores[spec.Type] > max {
			max = scores[spec.Type]
		}
	}
	if max <= 0 {
		return "", false
	}

	var tied []RequestType
	for _, spec := range Registry {
		if scores[spec.Type] == max {
			tied = append(tied, spec.Type)
		}
	}
	if len(tied) == 1 {
		return tied[0], true
	}

	for _, tb := range domainTieBreaks {
		if !containsWord(lower, tb.word) {
			continue
		}
		for _, t := range tied {
			if t == tb.t {
				return t, true
			}
		}
	}

	// Registry order is the static priority.
	return tied[0], true
}
