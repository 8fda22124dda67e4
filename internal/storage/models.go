package storage

import (
	"time"

	"github.com/google/uuid"
)

// ActionRecord journals one act/dismiss write issued by a session.
type ActionRecord struct {
	ID        int64
	SessionID uuid.UUID
	UserID    int64
	AlertID   string
	Action    string
	Succeeded bool
	Error     *string
	CreatedAt time.Time
}

// ScanRecord journals one on-demand scan.
type ScanRecord struct {
	ID              int64
	SessionID       uuid.UUID
	UserID          int64
	PostsScanned    int
	SpikesDetected  int
	AlertsGenerated int
	Error           *string
	CreatedAt       time.Time
}
