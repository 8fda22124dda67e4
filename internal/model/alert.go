package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Urgency is the detector's urgency tag for an alert.
type Urgency string

const (
	UrgencyCritical Urgency = "critical"
	UrgencyHigh     Urgency = "high"
	UrgencyMedium   Urgency = "medium"
	UrgencyLow      Urgency = "low"
)

// Status is the viewer-facing lifecycle state of an alert.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActedOn   Status = "acted_on"
	StatusDismissed Status = "dismissed"
)

// ParseStatus maps a backend status onto the viewer lifecycle. The backend
// also reports sent, opened and expired; none of them close the alert for the
// viewer, so they collapse to pending.
func ParseStatus(raw string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusActedOn:
		return StatusActedOn
	case StatusDismissed:
		return StatusDismissed
	default:
		return StatusPending
	}
}

// Terminal reports whether no further transition is allowed.
func (s Status) Terminal() bool {
	return s == StatusActedOn || s == StatusDismissed
}

// UnmarshalJSON normalises backend statuses.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = ParseStatus(raw)
	return nil
}

// AlertID is an opaque alert identifier. The backend emits integers; they are
// kept as their decimal string.
type AlertID string

// UnmarshalJSON accepts both JSON numbers and strings.
func (id *AlertID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = AlertID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = AlertID(n.String())
	return nil
}

// MarshalJSON emits numeric ids as numbers so requests round-trip with the backend.
func (id AlertID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// Beats is the ordered list of visual beats in a draft.
type Beats []string

// UnmarshalJSON tolerates a non-array value, which decodes as no beats.
func (b *Beats) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		*b = nil
		return nil
	}
	*b = list
	return nil
}

// DraftStructure is the generated rewrite attached to an alert.
type DraftStructure struct {
	VisualBeats     Beats  `json:"visual_beats,omitempty"`
	FormatBreakdown string `json:"format_breakdown,omitempty"`
	AdaptationNotes string `json:"adaptation_notes,omitempty"`
	CTA             string `json:"cta,omitempty"`
	CaptionDraft    string `json:"caption_draft,omitempty"`
}

// Alert is one detected competitor-post spike with its rewrite suggestion.
// Everything except Status is a read-only projection of what the detector produced.
type Alert struct {
	ID                 AlertID         `json:"id"`
	CreatorHandle      string          `json:"creator_handle"`
	CreatorName        string          `json:"creator_name,omitempty"`
	VelocityMultiplier float64         `json:"velocity_multiplier"`
	ViewsAtDetection   int64           `json:"views_at_detection"`
	HoursSincePost     float64         `json:"hours_since_post"`
	DetectedFormat     string          `json:"detected_format,omitempty"`
	Headline           string          `json:"alert_headline"`
	Body               string          `json:"alert_body"`
	DraftHook          string          `json:"draft_hook,omitempty"`
	DraftStructure     *DraftStructure `json:"draft_structure,omitempty"`
	RewriteRationale   string          `json:"rewrite_rationale,omitempty"`
	Urgency            Urgency         `json:"urgency"`
	Status             Status          `json:"status"`
	EstimatedPeakHours *float64        `json:"estimated_peak_hours,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	SentAt             *time.Time      `json:"sent_at,omitempty"`
}

// AlertFeed is the backend envelope for an alert listing.
type AlertFeed struct {
	Alerts       []Alert `json:"alerts"`
	Total        int     `json:"total"`
	PendingCount int     `json:"pending_count"`
}

// AlertQuery filters an alert listing. Zero values are omitted.
type AlertQuery struct {
	Urgency Urgency
	Status  string
	Limit   int
}
