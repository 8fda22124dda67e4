// Package classify turns raw alert and feed fields into display tiers and labels.
// Every function here is pure; absent inputs map to a defined "no value" result.
package classify

import (
	"fmt"
	"math"

	"spikeradar/internal/model"
)

// Tier describes how an urgency tag is presented.
type Tier struct {
	Urgency model.Urgency
	Label   string
	Pulsing bool
	Rank    int
}

var tiers = map[model.Urgency]Tier{
	model.UrgencyCritical: {Urgency: model.UrgencyCritical, Label: "WAVE ALERT", Pulsing: true, Rank: 4},
	model.UrgencyHigh:     {Urgency: model.UrgencyHigh, Label: "TREND SPIKE", Pulsing: true, Rank: 3},
	model.UrgencyMedium:   {Urgency: model.UrgencyMedium, Label: "VELOCITY ALERT", Rank: 2},
	model.UrgencyLow:      {Urgency: model.UrgencyLow, Label: "WATCHING", Rank: 1},
}

// ClassifyUrgency maps a tag to its tier. Unknown or empty tags are treated as low.
func ClassifyUrgency(tag model.Urgency) Tier {
	if tier, ok := tiers[tag]; ok {
		return tier
	}
	return tiers[model.UrgencyLow]
}

// AtLeast reports whether tag ranks at or above min.
func AtLeast(tag, min model.Urgency) bool {
	return ClassifyUrgency(tag).Rank >= ClassifyUrgency(min).Rank
}

// PeakLabel phrases the detector's peak estimate. The estimate is a snapshot
// taken at detection time and is not aged against the wall clock.
func PeakLabel(hours *float64) (string, bool) {
	if hours == nil || math.IsNaN(*hours) {
		return "", false
	}
	if *hours < 1 {
		return "Peaking NOW", true
	}
	return fmt.Sprintf("~%dh to peak", int64(math.Floor(*hours+0.5))), true
}
