// Package events defines the featured-membership events spotlight publishes
// to Redis Streams.
package events

import (
	"time"

	"github.com/google/uuid"
)

// StreamName is the Redis stream for featured-membership events.
const StreamName = "spotlight-events"

// EventType represents the type of featured-membership event.
type EventType string

const (
	// FeatureAdded is emitted when an item gains the featured membership.
	FeatureAdded EventType = "FEATURE_ADDED"
	// FeatureRemoved is emitted when an item loses the featured membership.
	FeatureRemoved EventType = "FEATURE_REMOVED"
	// MigrationCompleted is emitted once the legacy flag scan finishes.
	MigrationCompleted EventType = "MIGRATION_COMPLETED"
)

// FeatureEvent is the envelope for every event on StreamName.
type FeatureEvent struct {
	EventID   uuid.UUID `json:"event_id"`
	EventType EventType `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// MembershipPayload accompanies FEATURE_ADDED and FEATURE_REMOVED.
type MembershipPayload struct {
	ItemID      int64  `json:"item_id"`
	ContentType string `json:"content_type"`
	// Source is "toggle" for editor saves and "migration" for the upgrade scan.
	Source string `json:"source"`
}

// MigrationPayload accompanies MIGRATION_COMPLETED.
type MigrationPayload struct {
	Migrated int    `json:"migrated"`
	Version  string `json:"version"`
}
