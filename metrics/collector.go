package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/marcelsud/artemis-inbox/inbox"
)

// StatsSource reports inbox counters. *inbox.Service satisfies it.
type StatsSource interface {
	Stats() inbox.Stats
}

// QueueSource reports the post-processing queue. *inbox.Dispatcher satisfies it.
type QueueSource interface {
	Pending() int
	Dropped() int64
}

// MirrorSource reports the length of a mirror. *redis.Repository satisfies it.
type MirrorSource interface {
	Len(ctx context.Context) (int64, error)
}

/* InboxCollector implements Collector over the live inbox components
 * The queue and mirror are optional
 */
type InboxCollector struct {
	stats  StatsSource
	queue  QueueSource
	mirror MirrorSource
	now    func() time.Time
}

// NewInboxCollector creates a new inbox metrics collector
func NewInboxCollector(stats StatsSource, queue QueueSource, mirror MirrorSource) *InboxCollector {
	return &InboxCollector{
		stats:  stats,
		queue:  queue,
		mirror: mirror,
		now:    time.Now,
	}
}

// Collect gathers all metrics
func (c *InboxCollector) Collect(ctx context.Context) (Metrics, error) {
	st := c.stats.Stats()
	m := Metrics{
		Inbox: InboxMetrics{
			Recorded:       st.Recorded,
			Notifications:  st.Notifications,
			Events:         st.Events,
			Malformed:      st.Malformed,
			MirrorFailures: st.MirrorFailures,
			Retained:       st.Retained,
			Capacity:       st.Capacity,
		},
		MirrorLength: -1,
		Timestamp:    c.now(),
	}

	if c.queue != nil {
		m.Queue = QueueMetrics{
			Pending: int64(c.queue.Pending()),
			Dropped: c.queue.Dropped(),
		}
	}

	if c.mirror != nil {
		n, err := c.mirror.Len(ctx)
		if err != nil {
			return m, fmt.Errorf("getting mirror length: %w", err)
		}
		m.MirrorLength = n
	}

	return m, nil
}
