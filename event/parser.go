package event

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Candidate fields for each value, in order of precedence.
// The platform is known to send the misspelled variants.
var (
	eventTypeFields  = []string{"eventType", "eventiype"}
	happenTimeFields = []string{"happenTime", "hapenTime"}
	srcTypeFields    = []string{"srcType", "srciype"}
	abilityFields    = []string{"ability", "params.ability"}
)

type nopNamer struct{}

func (nopNamer) Name(code int64) string {
	return UnknownName(code)
}

// Parser normalizes raw notification payloads
type Parser struct {
	namer Namer
}

// NewParser creates a parser that labels event types with namer
func NewParser(namer Namer) *Parser {
	if namer == nil {
		namer = nopNamer{}
	}
	return &Parser{namer: namer}
}

// Parse builds an Envelope from raw JSON bytes.
// It never fails: missing or malformed fields fall back to zero values.
func (p *Parser) Parse(raw []byte) Envelope {
	root := gjson.ParseBytes(raw)

	env := Envelope{
		Method:  UnknownMethod,
		Ability: first(root, abilityFields).String(),
		Events:  make([]Record, 0),
	}
	if json.Valid(raw) {
		env.Raw = json.RawMessage(raw)
	}
	if method := root.Get("method").String(); method != "" {
		env.Method = method
	}

	params := root.Get("params")
	if !params.IsObject() {
		return env
	}
	env.SendTime = params.Get("sendTime").String()

	events := params.Get("events")
	switch {
	case events.IsArray():
		for i, item := range events.Array() {
			env.Events = append(env.Events, p.record(i+1, item))
		}
	case events.IsObject():
		env.Events = append(env.Events, p.record(1, events))
	}

	return env
}

func (p *Parser) record(index int, item gjson.Result) Record {
	eventType := first(item, eventTypeFields).Int()

	rec := Record{
		Index:          index,
		EventID:        item.Get("eventId").String(),
		EventType:      eventType,
		EventTypeName:  p.namer.Name(eventType),
		HappenTime:     first(item, happenTimeFields).String(),
		SrcIndex:       item.Get("srcIndex").String(),
		SrcName:        item.Get("srcName").String(),
		SrcParentIndex: item.Get("srcParentIndex").String(),
		SrcType:        first(item, srcTypeFields).String(),
		Status:         item.Get("status").Int(),
		Timeout:        item.Get("timeout").Int(),
	}
	if item.Raw != "" {
		rec.Raw = json.RawMessage(item.Raw)
	}
	return rec
}

// first returns the first candidate field that is present and not null
func first(item gjson.Result, candidates []string) gjson.Result {
	if !item.IsObject() {
		return gjson.Result{}
	}
	for _, name := range candidates {
		if v := item.Get(name); v.Exists() && v.Type != gjson.Null {
			return v
		}
	}
	return gjson.Result{}
}

// EventCount returns the number of entries under params.events, and whether the field exists
func EventCount(raw []byte) (int, bool) {
	events := gjson.GetBytes(raw, "params.events")
	switch {
	case events.IsArray():
		return len(events.Array()), true
	case events.IsObject():
		return 1, true
	default:
		return 0, false
	}
}
