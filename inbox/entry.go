package inbox

import (
	"time"

	"github.com/marcelsud/artemis-inbox/event"
)

// TimestampLayout is the human readable layout of Entry.Timestamp
const TimestampLayout = "2006/1/2 15:04:05"

/* Entry is one retained inbound HTTP request
 * Uses value semantics as it represents data, not behavior
 */
type Entry struct {
	ID         string            `json:"id"`
	Method     string            `json:"method"`
	Path       string            `json:"path"`
	Query      map[string]any    `json:"query"`
	Body       any               `json:"body,omitempty"`
	BodyKind   BodyKind          `json:"bodyKind"`
	RawBody    string            `json:"rawBody,omitempty"`
	Headers    map[string]string `json:"headers"`
	Timestamp  string            `json:"timestamp"`
	ReceivedAt time.Time         `json:"receivedAt"`
	Transport  Transport         `json:"protocol"`
	Event      *event.Envelope   `json:"parsedEvent,omitempty"`
}
