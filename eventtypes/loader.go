package eventtypes

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the structure of an event types file
type Config struct {
	EventTypes []EventTypeConfig `yaml:"event_types"`
}

// EventTypeConfig represents a single entry in the YAML file
type EventTypeConfig struct {
	Code int64  `yaml:"code"`
	Name string `yaml:"name"`
}

/* Loader reads event type labels from a YAML file
 * Loaded labels are merged over the table defaults
 */
type Loader struct {
	table *Table
}

// NewLoader creates a loader that fills table
func NewLoader(table *Table) *Loader {
	return &Loader{table: table}
}

// Load reads and parses the event types file.
// Nothing is merged unless the whole file is valid.
func (l *Loader) Load(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("reading event types file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("parsing event types YAML: %w", err)
	}

	seen := make(map[int64]struct{}, len(config.EventTypes))
	loaded := make([]EventType, 0, len(config.EventTypes))
	for _, ec := range config.EventTypes {
		et := EventType{Code: ec.Code, Name: ec.Name}
		if err := et.Validate(); err != nil {
			return fmt.Errorf("validating event type: %w", err)
		}
		if _, dup := seen[et.Code]; dup {
			return fmt.Errorf("duplicate event type code %d", et.Code)
		}
		seen[et.Code] = struct{}{}
		loaded = append(loaded, et)
	}

	for _, et := range loaded {
		if err := l.table.Set(et); err != nil {
			return fmt.Errorf("adding event type: %w", err)
		}
	}

	return nil
}

// Table returns the table the loader fills
func (l *Loader) Table() *Table {
	return l.table
}
