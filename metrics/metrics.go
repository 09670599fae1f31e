package metrics

import (
	"context"
	"time"
)

// Metrics represents the current state of the inbox.
type Metrics struct {
	// Inbox holds the counters of the inbox service
	Inbox InboxMetrics `json:"inbox"`

	// Queue describes the post-processing queue
	Queue QueueMetrics `json:"queue"`

	// MirrorLength is the number of entries in the Redis mirror, -1 when no mirror is configured
	MirrorLength int64 `json:"mirror_length"`

	// Timestamp when metrics were collected
	Timestamp time.Time `json:"timestamp"`
}

// InboxMetrics represents what the inbox has seen since start.
type InboxMetrics struct {
	Recorded       int64 `json:"recorded"`
	Notifications  int64 `json:"notifications"`
	Events         int64 `json:"events"`
	Malformed      int64 `json:"malformed"`
	MirrorFailures int64 `json:"mirror_failures"`

	// Retained is the current retention buffer length
	Retained int64 `json:"retained"`

	// Capacity is the retention buffer capacity
	Capacity int64 `json:"capacity"`
}

// QueueMetrics represents the post-processing queue.
type QueueMetrics struct {
	Pending int64 `json:"pending"`
	Dropped int64 `json:"dropped"`
}

// Collector defines the interface for collecting metrics from the inbox.
type Collector interface {
	// Collect gathers current metrics from the system
	Collect(ctx context.Context) (Metrics, error)
}
