package model

import "time"

// VelocityFeedItem describes one observed post, spiking or not.
type VelocityFeedItem struct {
	CreatorHandle      string  `json:"creator_handle"`
	CreatorName        string  `json:"creator_name,omitempty"`
	PostURL            string  `json:"post_url,omitempty"`
	CaptionPreview     string  `json:"caption_preview,omitempty"`
	Views              int64   `json:"views"`
	VelocityMultiplier float64 `json:"velocity_multiplier"`
	HoursSincePost     float64 `json:"hours_since_post"`
	DetectedFormat     string  `json:"detected_format,omitempty"`
	IsSpike            bool    `json:"is_spike"`
	AlertGenerated     bool    `json:"alert_generated"`
}

// VelocityFeed is replaced wholesale on every refresh.
type VelocityFeed struct {
	Items      []VelocityFeedItem `json:"items"`
	SpikeCount int                `json:"spike_count"`
	LastScanAt *time.Time         `json:"last_scan_at,omitempty"`
}

// ScanResult summarises an on-demand scan.
type ScanResult struct {
	PostsScanned    int     `json:"posts_scanned"`
	SpikesDetected  int     `json:"spikes_detected"`
	AlertsGenerated int     `json:"alerts_generated"`
	Alerts          []Alert `json:"alerts,omitempty"`
}
