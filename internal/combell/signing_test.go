package combell

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSignature_Deterministic(t *testing.T) {
	ts := time.Unix(1700000000, 0)
	a := Signature(testCreds, "GET", "/v2/accounts?skip=0&take=100", nil, ts, "nonce-1")
	b := Signature(testCreds, "get", "/v2/accounts?skip=0&take=100", nil, ts, "nonce-1")
	assert.Equal(t, a, b, "method is lower-cased before signing")
	assert.NotEmpty(t, a)

	assert.NotEqual(t, a, Signature(testCreds, "GET", "/v2/accounts?skip=0&take=100", nil, ts, "nonce-2"))
	assert.NotEqual(t, a, Signature(testCreds, "GET", "/v2/accounts?skip=100&take=100", nil, ts, "nonce-1"))
	assert.NotEqual(t, a, Signature(testCreds, "GET", "/v2/accounts?skip=0&take=100", []byte(`{}`), ts, "nonce-1"))

	other := Credentials{APIKey: testCreds.APIKey, APISecret: "other"}
	assert.NotEqual(t, a, Signature(other, "GET", "/v2/accounts?skip=0&take=100", nil, ts, "nonce-1"))
}

func TestAuthorizationHeader(t *testing.T) {
	ts := time.Unix(1700000000, 0)
	header := AuthorizationHeader(testCreds, "GET", "/v2/domains", nil, ts, "abc")

	assert.True(t, strings.HasPrefix(header, "hmac test-key:"))
	assert.True(t, strings.HasSuffix(header, ":abc:1700000000"))

	sig := Signature(testCreds, "GET", "/v2/domains", nil, ts, "abc")
	assert.Equal(t, "hmac test-key:"+sig+":abc:1700000000", header)
}
