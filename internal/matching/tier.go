package matching

import "strings"

// Tier is a coarse confidence bucket attached to every match method.
type Tier string

const (
	TierCertain  Tier = "certain"
	TierHigh     Tier = "high"
	TierModerate Tier = "moderate"
	TierLow      Tier = "low"
)

// Known reports whether the tier is one of the defined buckets.
func (t Tier) Known() bool {
	switch t {
	case TierCertain, TierHigh, TierModerate, TierLow:
		return true
	}
	return false
}

// Method is the tagged value behind the persisted method string: a tier plus
// an optional free-form detail. It serializes to the legacy delimited form
// "tier" or "tier:detail" only at the store boundary.
type Method struct {
	Tier   Tier
	Detail string
}

func (m Method) String() string {
	if m.Detail == "" {
		return string(m.Tier)
	}
	return string(m.Tier) + ":" + m.Detail
}

// ParseMethod decodes a persisted method string. Tier extraction takes only
// the first segment; the detail keeps any further delimiters verbatim, so
// consumers never depend on a fixed segment count.
func ParseMethod(value string) Method {
	tier, detail, _ := strings.Cut(strings.TrimSpace(value), ":")
	return Method{
		Tier:   Tier(strings.ToLower(strings.TrimSpace(tier))),
		Detail: detail,
	}
}

// ParseTier extracts just the tier bucket from a persisted method string.
func ParseTier(value string) Tier {
	return ParseMethod(value).Tier
}
