package event

import (
	"encoding/json"
	"strconv"
)

// MethodNotify is the method name the platform uses for event notifications
const MethodNotify = "OnEventNotify"

// UnknownMethod is used when a payload carries no method
const UnknownMethod = "unknown"

/* Record is one normalized upstream event
 * Every field falls back to its zero value when absent
 */
type Record struct {
	Index          int             `json:"index"`
	EventID        string          `json:"eventId"`
	EventType      int64           `json:"eventType"`
	EventTypeName  string          `json:"eventTypeName"`
	HappenTime     string          `json:"happenTime"`
	SrcIndex       string          `json:"srcIndex"`
	SrcName        string          `json:"srcName"`
	SrcParentIndex string          `json:"srcParentIndex"`
	SrcType        string          `json:"srcType"`
	Status         int64           `json:"status"`
	Timeout        int64           `json:"timeout"`
	Raw            json.RawMessage `json:"raw,omitempty"`
}

/* Envelope is one parsed inbound notification
 * It is built once per callback and never mutated afterwards
 */
type Envelope struct {
	Method   string          `json:"method"`
	Ability  string          `json:"ability"`
	SendTime string          `json:"sendTime"`
	Events   []Record        `json:"events"`
	Raw      json.RawMessage `json:"raw,omitempty"`
}

// IsNotification reports whether the envelope carries event notifications
func (e Envelope) IsNotification() bool {
	return e.Method == MethodNotify
}

// Namer resolves event type codes to human labels
type Namer interface {
	Name(code int64) string
}

// UnknownName is the label used for codes no table knows about
func UnknownName(code int64) string {
	return "unknown event type (" + strconv.FormatInt(code, 10) + ")"
}
