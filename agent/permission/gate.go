// Package permission holds the pure tier/action predicates. Nothing here
// mutates state or performs I/O; checks are cheap enough to always recompute.
package permission

import (
	"sort"

	contractx "github.com/nimbushome/support-agent/agent/contract"
)

// IsAllowed reports whether the tier's allowed_actions set contains action.
// Membership is the whole story: tiers carry no rank and no inheritance.
func IsAllowed(tier contractx.Tier, action string) bool {
	return tier.Allows(action)
}

// AllAllowed reports whether every action is permitted for the tier.
func AllAllowed(tier contractx.Tier, actions []string) bool {
	for _, a := range actions {
		if !tier.Allows(a) {
			return false
		}
	}
	return true
}

// MinimalTierFor returns the smallest registered tier that permits every
// action: fewest allowed actions wins, name order breaks ties. The second
// return is false when no registered tier unlocks the actions.
func MinimalTierFor(actions []string, tiers []contractx.Tier) (contractx.Tier, bool) {
	candidates := make([]contractx.Tier, 0, len(tiers))
	for _, t := range tiers {
		if AllAllowed(t, actions) {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return contractx.Tier{}, false
	}
	sort.Slice(candidates, func(i, j int) bool {
		if len(candidates[i].AllowedActions) != len(candidates[j].AllowedActions) {
			return len(candidates[i].AllowedActions) < len(candidates[j].AllowedActions)
		}
		return candidates[i].Name < candidates[j].Name
	})
	return candidates[0], true
}

// AlternativeAction suggests one action the tier does permit, in the tier's
// own declaration order. Used by the denied narrative.
func AlternativeAction(tier contractx.Tier, denied []string) (string, bool) {
	deniedSet := make(map[string]bool, len(denied))
	for _, a := range denied {
		deniedSet[a] = true
	}
	for _, a := range tier.AllowedActions {
		if !deniedSet[a] {
			return a, true
		}
	}
	return "", false
}
