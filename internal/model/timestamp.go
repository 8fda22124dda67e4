package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// naiveLayout is how the backend serialises its zone-less UTC columns.
const naiveLayout = "2006-01-02T15:04:05.999999999"

// ParseTimestamp accepts RFC 3339 and the backend's zone-less form, which is
// read as UTC.
func ParseTimestamp(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(naiveLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", raw, err)
	}
	return t, nil
}

// backendTime decodes a timestamp field through ParseTimestamp.
type backendTime time.Time

func (t *backendTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseTimestamp(raw)
	if err != nil {
		return err
	}
	*t = backendTime(parsed)
	return nil
}

func (t *backendTime) ptr() *time.Time {
	if t == nil {
		return nil
	}
	v := time.Time(*t)
	return &v
}

// UnmarshalJSON decodes an alert, tolerating zone-less timestamps.
func (a *Alert) UnmarshalJSON(data []byte) error {
	type plain Alert
	aux := struct {
		*plain
		CreatedAt backendTime  `json:"created_at"`
		SentAt    *backendTime `json:"sent_at"`
	}{plain: (*plain)(a)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	a.CreatedAt = time.Time(aux.CreatedAt)
	a.SentAt = aux.SentAt.ptr()
	return nil
}

// UnmarshalJSON decodes a feed, tolerating a zone-less last scan time.
func (f *VelocityFeed) UnmarshalJSON(data []byte) error {
	type plain VelocityFeed
	aux := struct {
		*plain
		LastScanAt *backendTime `json:"last_scan_at"`
	}{plain: (*plain)(f)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	f.LastScanAt = aux.LastScanAt.ptr()
	return nil
}

// UnmarshalJSON decodes a user, tolerating a zone-less creation time.
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	aux := struct {
		*plain
		CreatedAt backendTime `json:"created_at"`
	}{plain: (*plain)(u)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	u.CreatedAt = time.Time(aux.CreatedAt)
	return nil
}

// UnmarshalJSON decodes a tracked creator, tolerating a zone-less scrape time.
func (c *TrackedCreator) UnmarshalJSON(data []byte) error {
	type plain TrackedCreator
	aux := struct {
		*plain
		LastScrapedAt *backendTime `json:"last_scraped_at"`
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	c.LastScrapedAt = aux.LastScrapedAt.ptr()
	return nil
}
