package classify

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DefaultBarCap is the multiplier that fills the velocity bar.
	DefaultBarCap = 8.0
	// HotMultiplier marks a spike as hot.
	HotMultiplier = 5.0
)

var (
	thousand = decimal.NewFromInt(1_000)
	million  = decimal.NewFromInt(1_000_000)
)

// Heat grades a feed row for emphasis.
type Heat int

const (
	HeatNone Heat = iota
	HeatWarm
	HeatHot
)

func (h Heat) String() string {
	switch h {
	case HeatHot:
		return "hot"
	case HeatWarm:
		return "warm"
	default:
		return "none"
	}
}

// VelocityBarFraction sizes a proportional indicator, always within [0, 1].
func VelocityBarFraction(multiplier, cap float64) float64 {
	if math.IsNaN(multiplier) || multiplier <= 0 {
		return 0
	}
	if cap <= 0 || math.IsNaN(cap) {
		return 1
	}
	return math.Min(multiplier/cap, 1.0)
}

// SpikeHeat grades a feed item: non-spikes are never emphasised.
func SpikeHeat(multiplier float64, isSpike bool) Heat {
	if !isSpike {
		return HeatNone
	}
	if multiplier >= HotMultiplier {
		return HeatHot
	}
	return HeatWarm
}

// FormatViews renders a view count: 999, 1.0k, 125k, 1.2M.
func FormatViews(n int64) string {
	switch {
	case n < 1_000:
		return strconv.FormatInt(n, 10)
	case n < 100_000:
		return decimal.NewFromInt(n).Div(thousand).StringFixed(1) + "k"
	case n < 1_000_000:
		return decimal.NewFromInt(n).Div(thousand).StringFixed(0) + "k"
	default:
		return decimal.NewFromInt(n).Div(million).StringFixed(1) + "M"
	}
}

// FormatMultiplier renders a velocity multiplier as "5.8x".
func FormatMultiplier(m float64) string {
	return decimal.NewFromFloat(m).StringFixed(1) + "x"
}

// HoursAgo renders hours since a post went live as "2h ago".
func HoursAgo(hours float64) string {
	if hours < 0 || math.IsNaN(hours) {
		hours = 0
	}
	return decimal.NewFromFloat(hours).StringFixed(0) + "h ago"
}

// ElapsedLabel renders the age of ts relative to now as minutes, hours or days.
// Values are floored, never rounded up. Future timestamps read as "0m ago".
func ElapsedLabel(ts, now time.Time) string {
	elapsed := now.Sub(ts)
	if elapsed < 0 {
		elapsed = 0
	}
	mins := int64(elapsed / time.Minute)
	if mins < 60 {
		return fmt.Sprintf("%dm ago", mins)
	}
	hrs := mins / 60
	if hrs < 24 {
		return fmt.Sprintf("%dh ago", hrs)
	}
	return fmt.Sprintf("%dd ago", hrs/24)
}
