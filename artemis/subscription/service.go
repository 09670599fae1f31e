package subscription

import (
	"context"
	"fmt"
	"net/http"

	"github.com/marcelsud/artemis-inbox/artemis/client"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

const (
	SubscribePath   = "/api/eventService/v1/eventSubscriptionByEventTypes"
	ViewPath        = "/api/eventService/v1/eventSubscriptionView"
	UnsubscribePath = "/api/eventService/v1/eventUnSubscriptionByEventTypes"

	successCode = "0"
)

// Caller sends one signed call to the platform. *client.Client satisfies it.
type Caller interface {
	Call(ctx context.Context, path string, body any) (*client.Response, error)
}

/* UpstreamError is returned when the platform answered but did not report success
 * Code and Msg are copied from the response envelope when present
 */
type UpstreamError struct {
	Path       string
	HTTPStatus int
	Code       string
	Msg        string
}

func (e *UpstreamError) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = "no message"
	}
	return fmt.Sprintf("%s: upstream rejected request (http %d, code %q): %s", e.Path, e.HTTPStatus, e.Code, msg)
}

// Subscription is one entry of the subscription view
type Subscription struct {
	EventTypes []int64 `json:"eventTypes"`
	EventDest  string  `json:"eventDest,omitempty"`
}

// View is the current subscription state reported by the platform
type View struct {
	Detail []Subscription `json:"detail"`
}

// EventTypes returns the union of the event types of every entry, in first-seen order
func (v View) EventTypes() []int64 {
	seen := make(map[int64]struct{})
	out := make([]int64, 0)
	for _, sub := range v.Detail {
		for _, code := range sub.EventTypes {
			if _, dup := seen[code]; dup {
				continue
			}
			seen[code] = struct{}{}
			out = append(out, code)
		}
	}
	return out
}

// UnsubscribeResult reports what UnsubscribeAll cancelled. An empty list means nothing was subscribed.
type UnsubscribeResult struct {
	EventTypes []int64
}

// UseCase defines the subscription management operations
type UseCase interface {
	Subscribe(ctx context.Context, eventTypes []int64, dest string) error
	View(ctx context.Context) (View, error)
	Unsubscribe(ctx context.Context, eventTypes []int64) error
	UnsubscribeAll(ctx context.Context) (UnsubscribeResult, error)
}

/* Service drives the subscription endpoints through a signed Caller
 * It never signs anything itself
 */
type Service struct {
	Caller Caller
	Log    zerolog.Logger
}

// NewService creates a new subscription service
func NewService(caller Caller, log zerolog.Logger) *Service {
	return &Service{
		Caller: caller,
		Log:    log,
	}
}

// Subscribe registers dest as the callback for the given event types
func (s *Service) Subscribe(ctx context.Context, eventTypes []int64, dest string) error {
	if len(eventTypes) == 0 {
		return fmt.Errorf("at least one event type is required")
	}
	if dest == "" {
		return fmt.Errorf("event destination is required")
	}

	body := map[string]any{
		"eventTypes": eventTypes,
		"eventDest":  dest,
	}
	if _, err := s.call(ctx, SubscribePath, body); err != nil {
		return fmt.Errorf("subscribing event types: %w", err)
	}

	s.Log.Info().Ints64("event_types", eventTypes).Str("event_dest", dest).Msg("event types subscribed")
	return nil
}

// View lists the current subscriptions
func (s *Service) View(ctx context.Context) (View, error) {
	resp, err := s.call(ctx, ViewPath, map[string]any{})
	if err != nil {
		return View{}, fmt.Errorf("querying subscriptions: %w", err)
	}

	detail := gjson.GetBytes(resp.Raw, "data.detail")
	if !detail.IsArray() {
		return View{}, &UpstreamError{
			Path:       ViewPath,
			HTTPStatus: resp.StatusCode,
			Code:       successCode,
			Msg:        "response has no subscription detail",
		}
	}

	view := View{Detail: make([]Subscription, 0)}
	detail.ForEach(func(_, item gjson.Result) bool {
		sub := Subscription{
			EventTypes: make([]int64, 0),
			EventDest:  item.Get("eventDest").String(),
		}
		item.Get("eventTypes").ForEach(func(_, code gjson.Result) bool {
			if code.Type == gjson.Number {
				sub.EventTypes = append(sub.EventTypes, code.Int())
			}
			return true
		})
		view.Detail = append(view.Detail, sub)
		return true
	})

	return view, nil
}

// Unsubscribe cancels the given event types
func (s *Service) Unsubscribe(ctx context.Context, eventTypes []int64) error {
	if len(eventTypes) == 0 {
		return fmt.Errorf("at least one event type is required")
	}

	body := map[string]any{"eventTypes": eventTypes}
	if _, err := s.call(ctx, UnsubscribePath, body); err != nil {
		return fmt.Errorf("unsubscribing event types: %w", err)
	}

	s.Log.Info().Ints64("event_types", eventTypes).Msg("event types unsubscribed")
	return nil
}

// UnsubscribeAll cancels every event type currently subscribed.
// A failed query stops the workflow before anything is cancelled.
func (s *Service) UnsubscribeAll(ctx context.Context) (UnsubscribeResult, error) {
	view, err := s.View(ctx)
	if err != nil {
		return UnsubscribeResult{}, err
	}

	eventTypes := view.EventTypes()
	if len(eventTypes) == 0 {
		s.Log.Info().Msg("no subscriptions to cancel")
		return UnsubscribeResult{EventTypes: eventTypes}, nil
	}

	s.Log.Info().Ints64("event_types", eventTypes).Int("count", len(eventTypes)).Msg("cancelling subscriptions")

	if err := s.Unsubscribe(ctx, eventTypes); err != nil {
		return UnsubscribeResult{}, err
	}

	return UnsubscribeResult{EventTypes: eventTypes}, nil
}

// call sends one request and turns a non-success envelope into an UpstreamError
func (s *Service) call(ctx context.Context, path string, body any) (*client.Response, error) {
	resp, err := s.Caller.Call(ctx, path, body)
	if err != nil {
		return nil, err
	}

	code := gjson.GetBytes(resp.Raw, "code")
	msg := gjson.GetBytes(resp.Raw, "msg").String()
	if resp.StatusCode != http.StatusOK || !code.Exists() || code.String() != successCode {
		if msg == "" && !gjson.ValidBytes(resp.Raw) {
			msg = string(resp.Raw)
		}
		return nil, &UpstreamError{
			Path:       path,
			HTTPStatus: resp.StatusCode,
			Code:       code.String(),
			Msg:        msg,
		}
	}

	return resp, nil
}
