package server

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"

	"combell-mcp/internal/combell"
	"combell-mcp/internal/config"
	"combell-mcp/pkg/logging"
)

const (
	// HeaderAPIKey carries the API key when Basic auth is not used.
	HeaderAPIKey = "X-API-Key"
	// HeaderAPISecret carries the API secret when Basic auth is not used.
	HeaderAPISecret = "X-API-Secret"

	msgMissingCredentials = "Missing or invalid API credentials"
	msgInvalidCredentials = "Invalid API credentials"

	// Rejection reasons reported to the RejectionRecorder.
	ReasonMissing = "missing"
	ReasonInvalid = "invalid"
)

// RejectionRecorder counts rejected requests. *metrics.Collector implements it.
type RejectionRecorder interface {
	AuthRejected(reason string)
}

// AuthGate rejects HTTP requests that carry no API credentials and attaches
// accepted credentials to the request context for the tool handlers.
type AuthGate struct {
	realm      string
	expected   combell.Credentials
	rejections RejectionRecorder
}

// NewAuthGate builds the gate from the auth configuration. rejections may be nil.
func NewAuthGate(cfg config.AuthConfig, rejections RejectionRecorder) *AuthGate {
	realm := cfg.Realm
	if realm == "" {
		realm = config.DefaultRealm
	}
	g := &AuthGate{realm: realm, rejections: rejections}
	if cfg.HasFixedCredentials() {
		g.expected = combell.Credentials{APIKey: cfg.APIKey, APISecret: cfg.APISecret}
	}
	return g
}

// PassThrough reports whether presented credentials are forwarded to Combell.
func (g *AuthGate) PassThrough() bool {
	return !g.expected.Valid()
}

// Wrap protects next with the gate.
func (g *AuthGate) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		creds, ok := presentedCredentials(r)
		if !ok {
			g.reject(ReasonMissing)
			w.Header().Set("WWW-Authenticate", fmt.Sprintf(`Basic realm=%q, charset="UTF-8"`, g.realm))
			writeJSONError(w, http.StatusUnauthorized, msgMissingCredentials)
			return
		}

		// Basic credentials are normalised so everything downstream sees one form.
		r.Header.Set(HeaderAPIKey, creds.APIKey)
		r.Header.Set(HeaderAPISecret, creds.APISecret)

		if !g.PassThrough() {
			if !g.matches(creds) {
				g.reject(ReasonInvalid)
				logging.Debug("Auth", "Rejected API key %s from %s", logging.Redact(creds.APIKey), r.RemoteAddr)
				writeJSONError(w, http.StatusForbidden, msgInvalidCredentials)
				return
			}
			// Upstream calls use the configured Combell credentials.
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(combell.WithCredentials(r.Context(), creds)))
	})
}

func (g *AuthGate) matches(creds combell.Credentials) bool {
	keyOK := subtle.ConstantTimeCompare([]byte(creds.APIKey), []byte(g.expected.APIKey)) == 1
	secretOK := subtle.ConstantTimeCompare([]byte(creds.APISecret), []byte(g.expected.APISecret)) == 1
	return keyOK && secretOK
}

func (g *AuthGate) reject(reason string) {
	if g.rejections != nil {
		g.rejections.AuthRejected(reason)
	}
}

// presentedCredentials reads Basic auth first, then the header pair.
func presentedCredentials(r *http.Request) (combell.Credentials, bool) {
	if key, secret, ok := r.BasicAuth(); ok {
		creds := combell.Credentials{APIKey: key, APISecret: secret}
		return creds, creds.Valid()
	}
	creds := combell.Credentials{
		APIKey:    r.Header.Get(HeaderAPIKey),
		APISecret: r.Header.Get(HeaderAPISecret),
	}
	return creds, creds.Valid()
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
