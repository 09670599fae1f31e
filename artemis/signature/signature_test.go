package signature

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	emptyObjectDigest = "mZFLkyvTelC5g8XnyQrpOw=="
	viewPath          = "/artemis/api/eventService/v1/eventSubscriptionView"
)

func fixtureHeaders() map[string]string {
	return map[string]string{
		"Accept":         "*/*",
		"Content-Type":   "application/json",
		"Content-MD5":    emptyObjectDigest,
		"X-Ca-Key":       "test-key",
		"X-Ca-Timestamp": "1700000000000",
		"X-Ca-Nonce":     "0123456789abcdef0123456789abcdef",
	}
}

func TestContentDigest(t *testing.T) {
	t.Run("success - known digest of empty object", func(t *testing.T) {
		assert.Equal(t, emptyObjectDigest, ContentDigest([]byte(`{}`)))
	})

	t.Run("success - known digest of subscription body", func(t *testing.T) {
		assert.Equal(t, "xQe/pFZ/a8gK/58gZEDNKA==", ContentDigest([]byte(`{"eventTypes":[196893]}`)))
	})

	t.Run("idempotent", func(t *testing.T) {
		body := []byte(`{"eventTypes":[131329,131331]}`)
		assert.Equal(t, ContentDigest(body), ContentDigest(body))
	})

	t.Run("distinct bodies produce distinct digests", func(t *testing.T) {
		corpus := []string{
			``,
			`{}`,
			`{ }`,
			`[]`,
			`{"eventTypes":[196893]}`,
			`{"eventTypes":[196894]}`,
			`{"eventTypes":[196893],"eventDest":"https://example.com/eventRcv"}`,
		}
		seen := make(map[string]string)
		for _, body := range corpus {
			digest := ContentDigest([]byte(body))
			if prev, ok := seen[digest]; ok {
				t.Fatalf("digest collision between %q and %q", prev, body)
			}
			seen[digest] = body
		}
	})
}

func TestBuildSigningString(t *testing.T) {
	t.Run("success - hand computed fixture", func(t *testing.T) {
		ctx, err := NewContext("POST", "https://platform.local:1443"+viewPath, []byte(`{}`), fixtureHeaders())
		require.NoError(t, err)

		expected := strings.Join([]string{
			"POST",
			"*/*",
			emptyObjectDigest,
			"application/json",
			"x-ca-key:test-key",
			"x-ca-nonce:0123456789abcdef0123456789abcdef",
			"x-ca-timestamp:1700000000000",
			viewPath,
		}, "\n")
		assert.Equal(t, expected, BuildSigningString(ctx))
	})

	t.Run("deterministic", func(t *testing.T) {
		ctx, err := NewContext("POST", "https://platform.local"+viewPath, []byte(`{}`), fixtureHeaders())
		require.NoError(t, err)
		assert.Equal(t, BuildSigningString(ctx), BuildSigningString(ctx))
	})

	t.Run("excluded headers are never signed whatever their case", func(t *testing.T) {
		headers := fixtureHeaders()
		headers["content-md5"] = "injected"
		headers["CONTENT-LENGTH"] = "2"
		headers["Host"] = "platform.local"
		headers["x-ca-signature"] = "stale"
		headers["X-Ca-Signature-Headers"] = "stale"
		headers["Connection"] = "close"
		headers["Transfer-Encoding"] = "chunked"
		headers["Server"] = "nginx"
		headers["X-Application-Context"] = "app"
		headers["Content-Encoding"] = "gzip"
		headers["DATE"] = ""

		ctx, err := NewContext("POST", "https://platform.local"+viewPath, []byte(`{}`), headers)
		require.NoError(t, err)

		out := BuildSigningString(ctx)
		block := strings.Split(out, "\n")[4:7]
		for _, line := range block {
			assert.True(t, strings.HasPrefix(line, "x-ca-key:") ||
				strings.HasPrefix(line, "x-ca-nonce:") ||
				strings.HasPrefix(line, "x-ca-timestamp:"), "unexpected signed header %q", line)
		}
		assert.NotContains(t, out, "injected")
		assert.NotContains(t, out, "stale")
		assert.NotContains(t, out, "content-md5:")
		assert.Equal(t, []string{"x-ca-key", "x-ca-nonce", "x-ca-timestamp"}, SignedHeaderNames(headers))
	})

	t.Run("zero signed headers keeps the separating newline", func(t *testing.T) {
		headers := map[string]string{
			"Accept":       "*/*",
			"Content-Type": "application/json",
		}
		ctx, err := NewContext("POST", "https://platform.local/artemis/api/x?a=1", []byte(`{}`), headers)
		require.NoError(t, err)

		expected := "POST\n*/*\n" + emptyObjectDigest + "\napplication/json\n\n/artemis/api/x?a=1"
		assert.Equal(t, expected, BuildSigningString(ctx))
	})

	t.Run("absent optional headers contribute no line", func(t *testing.T) {
		ctx := Context{
			Method:     "POST",
			ContentMD5: emptyObjectDigest,
			Headers:    map[string]string{"X-Ca-Key": " padded "},
			Path:       "/p",
		}
		assert.Equal(t, "POST\n"+emptyObjectDigest+"\nx-ca-key:padded\n/p", BuildSigningString(ctx))
	})

	t.Run("date header is appended after content type", func(t *testing.T) {
		headers := fixtureHeaders()
		headers["Date"] = "Tue, 14 Nov 2023 22:13:20 GMT"
		ctx, err := NewContext("POST", "https://platform.local/p", []byte(`{}`), headers)
		require.NoError(t, err)

		lines := strings.Split(BuildSigningString(ctx), "\n")
		assert.Equal(t, "application/json", lines[3])
		assert.Equal(t, "Tue, 14 Nov 2023 22:13:20 GMT", lines[4])
	})

	t.Run("method is parameterizable", func(t *testing.T) {
		ctx, err := NewContext("GET", "https://platform.local/p", []byte(`{}`), fixtureHeaders())
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(BuildSigningString(ctx), "GET\n"))
	})

	t.Run("error - invalid url", func(t *testing.T) {
		_, err := NewContext("POST", "://bad", nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing request url")
	})
}

func TestSign(t *testing.T) {
	t.Run("success - hand computed signature", func(t *testing.T) {
		ctx, err := NewContext("POST", "https://platform.local"+viewPath, []byte(`{}`), fixtureHeaders())
		require.NoError(t, err)

		sig, err := Sign(BuildSigningString(ctx), "test-secret")
		require.NoError(t, err)
		assert.Equal(t, "//OWbOrxCsiY9DSbcB1hQUq4JYWOKiwTkRx661pok4c=", sig)
	})

	t.Run("success - empty header block signature", func(t *testing.T) {
		signing := "POST\n*/*\n" + emptyObjectDigest + "\napplication/json\n\n/artemis/api/x?a=1"
		sig, err := Sign(signing, "test-secret")
		require.NoError(t, err)
		assert.Equal(t, "Z/kLO5CHFLHO6r0bb4ZGtQnVGZxfyBR8MRUOWN2qY5Y=", sig)
	})

	t.Run("different secrets produce different signatures", func(t *testing.T) {
		sig1, err1 := Sign("POST\n/p", "secret-1")
		sig2, err2 := Sign("POST\n/p", "secret-2")
		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.NotEqual(t, sig1, sig2)
	})

	t.Run("error - secret is not UTF-8", func(t *testing.T) {
		_, err := Sign("POST\n/p", string([]byte{0xff, 0xfe}))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidEncoding))
	})

	t.Run("error - signing string is not UTF-8", func(t *testing.T) {
		_, err := Sign("POST\n"+string([]byte{0xc3, 0x28}), "secret")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidEncoding))
	})
}

func TestApply(t *testing.T) {
	ctx, err := NewContext("POST", "https://platform.local"+viewPath, []byte(`{}`), fixtureHeaders())
	require.NoError(t, err)

	res, err := Apply(ctx, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, "//OWbOrxCsiY9DSbcB1hQUq4JYWOKiwTkRx661pok4c=", res.Signature)
	assert.Equal(t, "x-ca-key,x-ca-nonce,x-ca-timestamp", res.HeaderValue())
}

func TestExcluded(t *testing.T) {
	assert.True(t, Excluded("Content-MD5"))
	assert.True(t, Excluded("content-md5"))
	assert.True(t, Excluded("X-CA-SIGNATURE"))
	assert.False(t, Excluded("X-Ca-Key"))

	names := SignedHeaderNames(map[string]string{
		"X-CA-SIGNATURE": "sig",
		"content-md5":    "digest",
		"Accept":         "*/*",
		"X-Ca-Key":       "key",
	})
	assert.Equal(t, []string{"x-ca-key"}, names)
}
