package domain

import "strings"

// Tier is a viewer's membership level. Tiers are ordered: FREE < VIP < VVIP.
type Tier string

const (
	TierFree Tier = "FREE"
	TierVIP  Tier = "VIP"
	TierVVIP Tier = "VVIP"
)

// Capability is something a tier unlocks
type Capability string

const (
	CapFullAnalysis     Capability = "full_analysis"
	CapUnlimitedReveals Capability = "unlimited_reveals"
	CapMacroDashboard   Capability = "macro_dashboard"
)

var tierCapabilities = map[Tier][]Capability{
	TierFree: {},
	TierVIP:  {CapFullAnalysis, CapUnlimitedReveals},
	TierVVIP: {CapFullAnalysis, CapUnlimitedReveals, CapMacroDashboard},
}

// ParseTier maps an identity claim to a tier. PRO is the older name for VIP;
// anything unrecognised is FREE.
func ParseTier(s string) Tier {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "VIP", "PRO":
		return TierVIP
	case "VVIP":
		return TierVVIP
	default:
		return TierFree
	}
}

// Has reports whether the tier grants c
func (t Tier) Has(c Capability) bool {
	for _, granted := range tierCapabilities[ParseTier(string(t))] {
		if granted == c {
			return true
		}
	}
	return false
}

// Capabilities lists what the tier grants, in a stable order
func (t Tier) Capabilities() []Capability {
	granted := tierCapabilities[ParseTier(string(t))]
	return append(make([]Capability, 0, len(granted)), granted...)
}

// Paid reports whether the tier is above FREE
func (t Tier) Paid() bool {
	return ParseTier(string(t)) != TierFree
}
