package inbox

import (
	"encoding/json"
	"fmt"
)

/* BodyKind records how a request body was interpreted
 * JSON first, then URL-encoded form, then raw text
 */
type BodyKind int

const (
	KindEmpty BodyKind = iota + 1
	KindJSON
	KindForm
	KindRaw
)

// String returns the string representation of the body kind
func (k BodyKind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindJSON:
		return "json"
	case KindForm:
		return "form"
	case KindRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// NewBodyKind creates a BodyKind from a string
func NewBodyKind(s string) BodyKind {
	switch s {
	case "json":
		return KindJSON
	case "form":
		return KindForm
	case "raw":
		return KindRaw
	default:
		return KindEmpty
	}
}

// Validate checks if the body kind is valid
func (k BodyKind) Validate() error {
	if k < KindEmpty || k > KindRaw {
		return fmt.Errorf("invalid body kind: %d", k)
	}
	return nil
}

func (k BodyKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *BodyKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("unmarshaling body kind: %w", err)
	}
	*k = NewBodyKind(s)
	return nil
}

// Transport is the listener a request arrived on
type Transport string

const (
	HTTP  Transport = "HTTP"
	HTTPS Transport = "HTTPS"
)
