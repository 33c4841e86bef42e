package combell

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Signature computes the HMAC-SHA256 request signature:
//
//	base64(hmac(secret, key + lower(method) + urlencode(pathAndQuery) + ts + nonce + content))
//
// where content is base64(md5(body)) for a non-empty body and empty otherwise.
func Signature(creds Credentials, method, pathAndQuery string, body []byte, ts time.Time, nonce string) string {
	var content string
	if len(body) > 0 {
		sum := md5.Sum(body)
		content = base64.StdEncoding.EncodeToString(sum[:])
	}

	var b strings.Builder
	b.WriteString(creds.APIKey)
	b.WriteString(strings.ToLower(method))
	b.WriteString(url.QueryEscape(pathAndQuery))
	b.WriteString(strconv.FormatInt(ts.Unix(), 10))
	b.WriteString(nonce)
	b.WriteString(content)

	mac := hmac.New(sha256.New, []byte(creds.APISecret))
	mac.Write([]byte(b.String()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// AuthorizationHeader builds the "hmac key:signature:nonce:timestamp" value.
func AuthorizationHeader(creds Credentials, method, pathAndQuery string, body []byte, ts time.Time, nonce string) string {
	sig := Signature(creds, method, pathAndQuery, body, ts, nonce)
	return fmt.Sprintf("hmac %s:%s:%s:%d", creds.APIKey, sig, nonce, ts.Unix())
}
