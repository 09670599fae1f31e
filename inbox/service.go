package inbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/marcelsud/artemis-inbox/event"
	"github.com/rs/zerolog"
)

/* Request is an inbound HTTP request captured after it was acknowledged
 * Body holds the complete body bytes, possibly empty
 */
type Request struct {
	Method     string
	Path       string
	Query      url.Values
	Headers    http.Header
	Body       []byte
	Transport  Transport
	ReceivedAt time.Time
}

// Stats is a point-in-time view of the inbox counters
type Stats struct {
	Recorded       int64
	Notifications  int64
	Events         int64
	Malformed      int64
	MirrorFailures int64
	Retained       int64
	Capacity       int64
}

// Recorder turns a captured request into a retained entry
type Recorder interface {
	Record(ctx context.Context, req Request) (Entry, error)
}

// UseCase defines the inbox operations
type UseCase interface {
	Recorder
	List(ctx context.Context) ([]Entry, error)
	Stats() Stats
}

// sizer is implemented by repositories that know their size, such as Buffer
type sizer interface {
	Len() int
	Cap() int
}

/* Service interprets captured requests and retains them
 * Uses pointer semantics as it's an API, not data
 */
type Service struct {
	Repo    Repository
	Mirrors []Writer
	Parser  *event.Parser
	Log     zerolog.Logger

	now            func() time.Time
	recorded       atomic.Int64
	notifications  atomic.Int64
	events         atomic.Int64
	malformed      atomic.Int64
	mirrorFailures atomic.Int64
}

// NewService creates a new inbox service with dependency injection
func NewService(repo Repository, parser *event.Parser, log zerolog.Logger) *Service {
	if parser == nil {
		parser = event.NewParser(nil)
	}
	return &Service{
		Repo:   repo,
		Parser: parser,
		Log:    log,
		now:    time.Now,
	}
}

// AddMirror registers a best-effort secondary writer. Not safe to call once Record is in use.
func (s *Service) AddMirror(w Writer) {
	s.Mirrors = append(s.Mirrors, w)
}

// Record interprets the request body and retains the resulting entry.
// Only POST bodies are interpreted; other methods are retained as-is.
func (s *Service) Record(ctx context.Context, req Request) (Entry, error) {
	received := req.ReceivedAt
	if received.IsZero() {
		received = s.now()
	}

	entry := Entry{
		ID:         uuid.New().String(),
		Method:     req.Method,
		Path:       req.Path,
		Query:      flattenValues(req.Query),
		Headers:    flattenHeaders(req.Headers),
		BodyKind:   KindEmpty,
		Timestamp:  received.Format(TimestampLayout),
		ReceivedAt: received,
		Transport:  req.Transport,
	}

	if req.Method == http.MethodPost {
		s.interpret(&entry, req.Body)
	} else {
		s.Log.Warn().Str("method", req.Method).Str("path", req.Path).Msg("non-POST request on callback path")
	}

	if err := s.Repo.Append(ctx, entry); err != nil {
		return Entry{}, fmt.Errorf("appending entry: %w", err)
	}
	s.recorded.Add(1)

	for _, mirror := range s.Mirrors {
		if err := mirror.Append(ctx, entry); err != nil {
			s.mirrorFailures.Add(1)
			s.Log.Warn().Err(err).Str("entry_id", entry.ID).Msg("mirroring entry failed")
		}
	}

	s.Log.Debug().
		Str("entry_id", entry.ID).
		Str("method", entry.Method).
		Str("body_kind", entry.BodyKind.String()).
		Msg("request retained")

	return entry, nil
}

// List returns the retained entries, newest first
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	entries, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	return entries, nil
}

// Stats returns the current counters
func (s *Service) Stats() Stats {
	st := Stats{
		Recorded:       s.recorded.Load(),
		Notifications:  s.notifications.Load(),
		Events:         s.events.Load(),
		Malformed:      s.malformed.Load(),
		MirrorFailures: s.mirrorFailures.Load(),
	}
	if sz, ok := s.Repo.(sizer); ok {
		st.Retained = int64(sz.Len())
		st.Capacity = int64(sz.Cap())
	}
	return st
}

func (s *Service) interpret(entry *Entry, body []byte) {
	entry.RawBody = string(body)
	if len(bytes.TrimSpace(body)) == 0 {
		return
	}

	var parsed any
	if err := json.Unmarshal(body, &parsed); err == nil {
		entry.BodyKind = KindJSON
		entry.Body = parsed

		if env := s.Parser.Parse(body); env.IsNotification() {
			entry.Event = &env
			s.notifications.Add(1)
			s.events.Add(int64(len(env.Events)))
			s.logSummary(env)
		} else if n, ok := event.EventCount(body); ok {
			s.Log.Info().Int("events", n).Msg("payload carries events without a notification method")
		}
		return
	}

	s.malformed.Add(1)
	if form, ok := parseForm(body); ok {
		entry.BodyKind = KindForm
		entry.Body = form
		s.Log.Warn().Int("bytes", len(body)).Msg("body is not JSON, kept as form data")
		return
	}

	entry.BodyKind = KindRaw
	entry.Body = entry.RawBody
	s.Log.Warn().Int("bytes", len(body)).Msg("body is neither JSON nor form data, kept as raw text")
}

func (s *Service) logSummary(env event.Envelope) {
	s.Log.Info().
		Str("method", env.Method).
		Str("ability", env.Ability).
		Str("send_time", env.SendTime).
		Int("events", len(env.Events)).
		Msg("event notification received")

	for _, rec := range env.Events {
		s.Log.Info().
			Int("index", rec.Index).
			Str("event_id", rec.EventID).
			Int64("event_type", rec.EventType).
			Str("event_type_name", rec.EventTypeName).
			Str("happen_time", rec.HappenTime).
			Str("src_index", rec.SrcIndex).
			Str("src_name", rec.SrcName).
			Str("src_parent_index", rec.SrcParentIndex).
			Str("src_type", rec.SrcType).
			Int64("status", rec.Status).
			Int64("timeout_seconds", rec.Timeout).
			Msg("event")
	}
}

// parseForm reads body as URL-encoded form data. Text without any key=value pair is not form data.
func parseForm(body []byte) (map[string]any, bool) {
	text := string(body)
	if !strings.Contains(text, "=") {
		return nil, false
	}
	values, err := url.ParseQuery(text)
	if err != nil {
		return nil, false
	}
	return flattenValues(values), true
}

func flattenValues(values url.Values) map[string]any {
	out := make(map[string]any, len(values))
	for key, vs := range values {
		if len(vs) == 1 {
			out[key] = vs[0]
			continue
		}
		out[key] = append([]string(nil), vs...)
	}
	return out
}

func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for key, values := range h {
		out[strings.ToLower(key)] = strings.Join(values, ", ")
	}
	return out
}
