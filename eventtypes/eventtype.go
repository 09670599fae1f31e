package eventtypes

import (
	"fmt"
	"strings"
)

/* EventType maps one platform event type code to a human label
 * Codes are assigned by the platform and are always positive
 */
type EventType struct {
	Code int64
	Name string
}

// Validate checks if the event type definition is valid
func (e EventType) Validate() error {
	if e.Code <= 0 {
		return fmt.Errorf("code must be positive (got %d)", e.Code)
	}
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("name cannot be empty for code %d", e.Code)
	}
	return nil
}

// Defaults are the labels known without any configuration file
var Defaults = []EventType{
	{Code: 131329, Name: "intelligent analysis event"},
	{Code: 131331, Name: "intelligent analysis event"},
	{Code: 196893, Name: "intelligent analysis event"},
}
