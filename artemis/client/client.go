package client

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/tls"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/marcelsud/artemis-inbox/artemis/signature"
	"github.com/rs/zerolog"
)

const (
	acceptAll       = "*/*"
	contentTypeJSON = "application/json"
	nonceBytes      = 16
)

// ErrMissingCredentials is returned when the app key or app secret is empty
var ErrMissingCredentials = errors.New("missing artemis credentials: app key and app secret are required")

// Credentials identify the caller to the platform. They are consumed as opaque strings.
type Credentials struct {
	AppKey    string
	AppSecret string
}

// Validate checks that both parts of the credential pair are present
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.AppKey) == "" || strings.TrimSpace(c.AppSecret) == "" {
		return ErrMissingCredentials
	}
	return nil
}

/* TransportError reports a call that never produced an HTTP response
 * (DNS, TCP, TLS handshake). It is never retried by the client.
 */
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: transport failure: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Response is the outcome of one signed call
type Response struct {
	StatusCode int
	// Body is the decoded JSON value, or the raw text when the body is not JSON
	Body any
	Raw  []byte
}

/* Client sends signed management requests to the platform
 * Uses pointer semantics as it's an API, not data
 */
type Client struct {
	baseURL  string
	creds    Credentials
	http     *resty.Client
	insecure bool
	now      func() time.Time
	nonce    func() (string, error)
	log      zerolog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithInsecureSkipVerify disables TLS certificate validation for outbound calls.
// Only for platforms running self-signed certificates.
func WithInsecureSkipVerify() Option {
	return func(c *Client) {
		c.insecure = true
	}
}

// WithHTTPClient replaces the underlying net/http client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = resty.NewWithClient(hc)
	}
}

// WithClock overrides the timestamp source
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// WithNonceSource overrides the nonce generator
func WithNonceSource(nonce func() (string, error)) Option {
	return func(c *Client) {
		c.nonce = nonce
	}
}

// WithLogger sets the client logger
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// New creates a client for the platform rooted at baseURL (e.g. https://host:1443/artemis)
func New(baseURL string, creds Credentials, opts ...Option) (*Client, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("base url is required")
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		now:     time.Now,
		nonce:   randomNonce,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.http == nil {
		c.http = resty.NewWithClient(&http.Client{})
	}
	if c.insecure {
		c.log.Warn().Str("base_url", c.baseURL).Msg("TLS certificate verification is disabled for outbound calls")
		c.http.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true}) //nolint:gosec // explicit operator opt-out
	}

	return c, nil
}

// Call sends a signed POST to path with body serialised as JSON
func (c *Client) Call(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, body)
}

// Do sends one signed request. The bytes digested are the bytes transmitted.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	payload, err := encodeBody(body)
	if err != nil {
		return nil, fmt.Errorf("encoding request body: %w", err)
	}

	nonce, err := c.nonce()
	if err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}

	url := c.baseURL + "/" + strings.TrimLeft(path, "/")
	headers := map[string]string{
		signature.HeaderAccept:      acceptAll,
		signature.HeaderContentType: contentTypeJSON,
		signature.HeaderContentMD5:  signature.ContentDigest(payload),
		signature.HeaderCaKey:       c.creds.AppKey,
		signature.HeaderCaTimestamp: strconv.FormatInt(c.now().UnixMilli(), 10),
		signature.HeaderCaNonce:     nonce,
	}

	sigCtx, err := signature.NewContext(method, url, payload, headers)
	if err != nil {
		return nil, fmt.Errorf("building signing context: %w", err)
	}
	signed, err := signature.Apply(sigCtx, c.creds.AppSecret)
	if err != nil {
		return nil, err
	}

	headers[signature.HeaderCaSignature] = signed.Signature
	headers[signature.HeaderCaSignatureNames] = signed.HeaderValue()
	headers[signature.HeaderContentLength] = strconv.Itoa(len(payload))

	c.log.Debug().
		Str("method", method).
		Str("url", url).
		Str("signed_headers", signed.HeaderValue()).
		Msg("sending signed request")

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetBody(payload).
		Execute(method, url)
	if err != nil {
		return nil, &TransportError{Method: method, URL: url, Err: err}
	}

	raw := resp.Body()
	out := &Response{
		StatusCode: resp.StatusCode(),
		Raw:        raw,
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		out.Body = string(raw)
	} else {
		out.Body = decoded
	}

	c.log.Debug().
		Str("url", url).
		Int("status", out.StatusCode).
		Msg("signed request completed")

	return out, nil
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return []byte(`{}`), nil
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(body); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func randomNonce() (string, error) {
	b := make([]byte, nonceBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
