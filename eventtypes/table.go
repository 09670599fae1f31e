package eventtypes

import (
	"sort"
	"sync"

	"github.com/marcelsud/artemis-inbox/event"
)

/* Table is the lookup of known event type codes
 * Closed by default, extensible through Set or a Loader
 */
type Table struct {
	mu    sync.RWMutex
	names map[int64]string
}

// NewTable creates a table seeded with Defaults
func NewTable() *Table {
	t := &Table{names: make(map[int64]string, len(Defaults))}
	for _, et := range Defaults {
		t.names[et.Code] = et.Name
	}
	return t
}

// Set adds or replaces a label
func (t *Table) Set(et EventType) error {
	if err := et.Validate(); err != nil {
		return err
	}
	t.mu.Lock()
	t.names[et.Code] = et.Name
	t.mu.Unlock()
	return nil
}

// Name returns the label for code, or a label embedding the code when unknown
func (t *Table) Name(code int64) string {
	t.mu.RLock()
	name, ok := t.names[code]
	t.mu.RUnlock()
	if !ok {
		return event.UnknownName(code)
	}
	return name
}

// Exists checks if a code has a label
func (t *Table) Exists(code int64) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.names[code]
	return ok
}

// List returns every known event type ordered by code
func (t *Table) List() []EventType {
	t.mu.RLock()
	out := make([]EventType, 0, len(t.names))
	for code, name := range t.names {
		out = append(out, EventType{Code: code, Name: name})
	}
	t.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
