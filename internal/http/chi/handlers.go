package chi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
	"github.com/marcelsud/artemis-inbox/inbox"
	"github.com/rs/zerolog"
)

// CallbackPath is the canonical path the platform posts notifications to
const CallbackPath = "/eventrcv"

// DefaultMaxBodyBytes caps a callback body when Options.MaxBodyBytes is unset
const DefaultMaxBodyBytes int64 = 10 << 20

// callbackAliases are lower-cased paths routed to the callback, including a known platform typo
var callbackAliases = map[string]struct{}{
	"/eventrcv":  {},
	"/eventrcvl": {},
}

// Submitter hands acknowledged requests to post-processing. *inbox.Dispatcher satisfies it.
type Submitter interface {
	Submit(req inbox.Request) bool
}

// Options configures the inbox router
type Options struct {
	Logger zerolog.Logger

	// ReceiveTimeout bounds how long a callback body may take to arrive
	ReceiveTimeout time.Duration

	// MaxBodyBytes caps a callback body; larger bodies are acknowledged and not recorded
	MaxBodyBytes int64

	// Metrics is mounted on /metrics when set
	Metrics http.Handler
}

// InboxHandlers sets up the callback endpoint and the read-only viewer routes
func InboxHandlers(ctx context.Context, inboxService inbox.UseCase, submitter Submitter, opts Options) *chi.Mux {
	if opts.ReceiveTimeout <= 0 {
		opts.ReceiveTimeout = 30 * time.Second
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}

	r := chi.NewRouter()
	r.Use(httplog.RequestLogger(opts.Logger))
	r.Use(middleware.Recoverer)
	r.Use(canonicalCallbackPath)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Read-only view of the retention buffer
	r.Get("/", getRequests(inboxService).ServeHTTP)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/requests", getRequests(inboxService).ServeHTTP)
	})

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	// Every method is acknowledged on the callback path
	r.With(middleware.RequestSize(opts.MaxBodyBytes)).Handle(CallbackPath, receiveCallback(submitter, opts))

	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	return r
}

// canonicalCallbackPath routes case and trailing-slash variants of the callback path.
// The request URL is left untouched so the retained entry keeps the path as sent.
func canonicalCallbackPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := strings.ToLower(r.URL.Path)
		if len(p) > 1 {
			p = strings.TrimSuffix(p, "/")
		}
		if _, ok := callbackAliases[p]; ok {
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				rctx.RoutePath = CallbackPath
			}
		}
		next.ServeHTTP(w, r)
	})
}
