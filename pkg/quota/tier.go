package quota

import (
	"math"
	"strings"
)

// Tier is a provider-defined quota class. The provider sizes each endpoint's
// quota by tier; the tier is rarely named explicitly, so it is usually
// inferred from the numeric limit value seen in response headers.
type Tier string

const (
	TierXS      Tier = "XS"
	TierS       Tier = "S"
	TierM       Tier = "M"
	TierL       Tier = "L"
	TierXL      Tier = "XL"
	TierUnknown Tier = "UNKNOWN"
)

// TierLimits holds the reference rates for a tier: burst is calls per second,
// Steady is calls per minute, PerHour is calls per hour. These are reference
// values used only to compute conservative suggested delays, not enforced
// limits.
type TierLimits struct {
	Burst   int
	Steady  int
	PerHour int
}

// tierLimits maps each tier to its reference rates. Unknown endpoints get
// mid-range reference values so the suggested delay stays conservative
// without stalling traffic.
var tierLimits = map[Tier]TierLimits{
	TierXS:      {Burst: 1, Steady: 15, PerHour: 900},
	TierS:       {Burst: 3, Steady: 60, PerHour: 3600},
	TierM:       {Burst: 10, Steady: 150, PerHour: 9000},
	TierL:       {Burst: 75, Steady: 700, PerHour: 42000},
	TierXL:      {Burst: 350, Steady: 3500, PerHour: 210000},
	TierUnknown: {Burst: 10, Steady: 150, PerHour: 9000},
}

// Limits returns the reference rates for the tier.
func (t Tier) Limits() TierLimits {
	if limits, ok := tierLimits[t]; ok {
		return limits
	}
	return tierLimits[TierUnknown]
}

// Delay returns the minimum spacing implied by the tier's burst rate,
// in milliseconds, rounded up.
func (t Tier) Delay() int {
	burst := t.Limits().Burst
	if burst <= 0 {
		return 0
	}
	return int(math.Ceil(1000.0 / float64(burst)))
}

// ParseTier parses an explicitly named tier. Returns TierUnknown for
// unrecognized values.
func ParseTier(value string) Tier {
	switch tier := Tier(strings.ToUpper(strings.TrimSpace(value))); tier {
	case TierXS, TierS, TierM, TierL, TierXL:
		return tier
	}
	return TierUnknown
}

// InferTier maps a numeric per-minute limit to the tier whose steady rate it
// matches. The provider's steady rates are well separated, so the largest
// tier whose steady rate does not exceed the limit is the right guess.
func InferTier(limit int64) Tier {
	switch {
	case limit >= 3500:
		return TierXL
	case limit >= 700:
		return TierL
	case limit >= 150:
		return TierM
	case limit >= 60:
		return TierS
	case limit > 0:
		return TierXS
	}
	return TierUnknown
}
