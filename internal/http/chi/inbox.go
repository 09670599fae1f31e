package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/marcelsud/artemis-inbox/inbox"
)

var (
	ackBody      = []byte(`{"code":"0","msg":"success"}`)
	notFoundBody = []byte(`{"code":"404","msg":"path not found"}`)
)

// receiveCallback handles every method on the callback path.
// The acknowledgment is flushed before the request is handed to post-processing.
func receiveCallback(submitter Submitter, opts Options) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received := time.Now()
		log := opts.Logger.With().Str("method", r.Method).Str("path", r.URL.Path).Logger()

		var body []byte
		if r.Method == http.MethodPost {
			b, err := readBody(w, r, opts.ReceiveTimeout)
			var tooLarge *http.MaxBytesError
			switch {
			case errors.As(err, &tooLarge):
				log.Warn().Int64("limit", tooLarge.Limit).Msg("callback body too large, acknowledging")
				writeJSON(w, http.StatusOK, ackBody)
				return
			case errors.Is(err, os.ErrDeadlineExceeded):
				log.Warn().Dur("timeout", opts.ReceiveTimeout).Int("bytes", len(b)).Msg("callback body not received in time, acknowledging")
				writeJSON(w, http.StatusOK, ackBody)
				return
			case err != nil:
				log.Error().Err(err).Msg("reading callback body failed, acknowledging")
				writeJSON(w, http.StatusOK, ackBody)
				return
			}
			body = b
		}

		writeJSON(w, http.StatusOK, ackBody)

		transport := inbox.HTTP
		if r.TLS != nil {
			transport = inbox.HTTPS
		}
		submitter.Submit(inbox.Request{
			Method:     r.Method,
			Path:       r.URL.Path,
			Query:      r.URL.Query(),
			Headers:    r.Header.Clone(),
			Body:       body,
			Transport:  transport,
			ReceivedAt: received,
		})
	})
}

// getRequests handles GET / and GET /v1/requests
func getRequests(inboxService inbox.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entries, err := inboxService.List(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(entries); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, notFoundBody)
}

// readBody reads the body under a read deadline. Writers without deadline support read without one.
func readBody(w http.ResponseWriter, r *http.Request, timeout time.Duration) ([]byte, error) {
	rc := http.NewResponseController(w)
	if err := rc.SetReadDeadline(time.Now().Add(timeout)); err == nil {
		defer rc.SetReadDeadline(time.Time{})
	}
	return io.ReadAll(r.Body)
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	h := w.Header()
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("Content-Length", strconv.Itoa(len(body)))
	h.Set("Connection", "close")
	w.WriteHeader(status)
	w.Write(body)
	_ = http.NewResponseController(w).Flush()
}
