package signature

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	HeaderAccept           = "Accept"
	HeaderContentType      = "Content-Type"
	HeaderContentMD5       = "Content-MD5"
	HeaderContentLength    = "Content-Length"
	HeaderDate             = "Date"
	HeaderCaKey            = "X-Ca-Key"
	HeaderCaTimestamp      = "X-Ca-Timestamp"
	HeaderCaNonce          = "X-Ca-Nonce"
	HeaderCaSignature      = "X-Ca-Signature"
	HeaderCaSignatureNames = "X-Ca-Signature-Headers"
)

// ErrInvalidEncoding is returned when the secret or the signing string is not valid UTF-8
var ErrInvalidEncoding = errors.New("signing input is not valid UTF-8")

// excluded holds the lower-cased header names that never take part in the signature
var excluded = map[string]struct{}{
	"x-ca-signature":         {},
	"x-ca-signature-headers": {},
	"accept":                 {},
	"content-md5":            {},
	"content-type":           {},
	"date":                   {},
	"content-length":         {},
	"server":                 {},
	"connection":             {},
	"host":                   {},
	"transfer-encoding":      {},
	"x-application-context":  {},
	"content-encoding":       {},
}

/* Context holds everything a single signature is computed from
 * It is built fresh for every outbound call and never reused
 */
type Context struct {
	Method      string
	Accept      string
	ContentMD5  string
	ContentType string
	Date        string
	Headers     map[string]string
	Path        string
	RawQuery    string
}

// Result is the output of Apply
type Result struct {
	Signature     string
	SignedHeaders []string
}

// HeaderValue returns the X-Ca-Signature-Headers value
func (r Result) HeaderValue() string {
	return strings.Join(r.SignedHeaders, ",")
}

// ContentDigest returns the base64-encoded MD5 of the exact body bytes
func ContentDigest(body []byte) string {
	sum := md5.Sum(body)
	return base64.StdEncoding.EncodeToString(sum[:])
}

// NewContext builds a signing context for a request about to be sent.
// Accept, Content-Type and Date are looked up in headers case-insensitively.
func NewContext(method, rawURL string, body []byte, headers map[string]string) (Context, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Context{}, fmt.Errorf("parsing request url: %w", err)
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}

	return Context{
		Method:      method,
		Accept:      lookup(headers, HeaderAccept),
		ContentMD5:  ContentDigest(body),
		ContentType: lookup(headers, HeaderContentType),
		Date:        lookup(headers, HeaderDate),
		Headers:     headers,
		Path:        path,
		RawQuery:    u.RawQuery,
	}, nil
}

// BuildSigningString creates the canonical string the signature is computed over.
// The remote side validates it byte for byte, including the empty header block.
func BuildSigningString(ctx Context) string {
	lines := []string{ctx.Method}
	for _, v := range []string{ctx.Accept, ctx.ContentMD5, ctx.ContentType, ctx.Date} {
		if v != "" {
			lines = append(lines, v)
		}
	}

	return strings.Join(lines, "\n") + "\n" + signedHeaderBlock(ctx.Headers) + "\n" + signingURL(ctx)
}

// SignedHeaderNames returns the lower-cased, sorted names of the headers that are signed
func SignedHeaderNames(headers map[string]string) []string {
	names := make([]string, 0, len(headers))
	for key := range canonicalHeaders(headers) {
		names = append(names, key)
	}
	sort.Strings(names)
	return names
}

// Sign computes the base64-encoded HMAC-SHA256 of the signing string keyed by secret
func Sign(signingString, secret string) (string, error) {
	if !utf8.ValidString(secret) {
		return "", fmt.Errorf("secret: %w", ErrInvalidEncoding)
	}
	if !utf8.ValidString(signingString) {
		return "", fmt.Errorf("signing string: %w", ErrInvalidEncoding)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signingString))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

// Apply signs the context and returns the signature plus the signed header names
func Apply(ctx Context, secret string) (Result, error) {
	sig, err := Sign(BuildSigningString(ctx), secret)
	if err != nil {
		return Result{}, fmt.Errorf("signing request: %w", err)
	}

	return Result{
		Signature:     sig,
		SignedHeaders: SignedHeaderNames(ctx.Headers),
	}, nil
}

// Excluded reports whether a header name is never signed
func Excluded(name string) bool {
	_, ok := excluded[strings.ToLower(name)]
	return ok
}

func canonicalHeaders(headers map[string]string) map[string]string {
	keys := make([]string, 0, len(headers))
	for key := range headers {
		keys = append(keys, key)
	}
	// names differing only in case collapse to one; sorting keeps the winner stable
	sort.Strings(keys)

	out := make(map[string]string, len(headers))
	for _, key := range keys {
		if Excluded(key) {
			continue
		}
		out[strings.ToLower(key)] = strings.TrimSpace(headers[key])
	}
	return out
}

func signedHeaderBlock(headers map[string]string) string {
	canonical := canonicalHeaders(headers)
	names := SignedHeaderNames(headers)

	lines := make([]string, len(names))
	for i, name := range names {
		lines[i] = name + ":" + canonical[name]
	}
	return strings.Join(lines, "\n")
}

func signingURL(ctx Context) string {
	if ctx.RawQuery != "" {
		return ctx.Path + "?" + ctx.RawQuery
	}
	return ctx.Path
}

func lookup(headers map[string]string, name string) string {
	for key, value := range headers {
		if strings.EqualFold(key, name) {
			return value
		}
	}
	return ""
}
