package watchdog

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"sync"
)

// peekLimit bounds how much of a 401/403 body the interceptor inspects.
const peekLimit = 64 * 1024

// expiryPhrases are the backend's known ways of reporting a dead token.
// Matched case-insensitively. A 401/403 without one of these is a normal
// request failure for its caller, never a session-ending event.
var expiryPhrases = []string{
	"jwt expired",
	"token expired",
	"expired token",
	"invalid token",
	"invalid or expired",
	"signature has expired",
}

func hasExpiryPhrase(body string) bool {
	lower := strings.ToLower(body)
	for _, phrase := range expiryPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// Transport is an http.RoundTripper middleware that inspects every response
// for token-expiry signals and triggers forced logout. It replaces the global
// fetch monkey-patching of browser clients with an explicit, injectable
// interceptor on the shared HTTP client.
type Transport struct {
	base http.RoundTripper
	wd   *Watchdog
}

// RoundTrip implements http.RoundTripper. The original caller can still
// consume the body: the inspected prefix is stitched back in front of the
// remaining stream.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil || resp == nil {
		return resp, err
	}
	if resp.StatusCode != http.StatusUnauthorized && resp.StatusCode != http.StatusForbidden {
		return resp, nil
	}
	// The termination call made during logout is exempt, so a dead token on
	// logout itself cannot re-trigger the watchdog.
	if strings.HasSuffix(req.URL.Path, "/auth/logout") {
		return resp, nil
	}

	ctx := req.Context()
	creds, loadErr := t.wd.store.Load(ctx)
	if loadErr != nil || !creds.IsAuthenticated() {
		return resp, nil
	}
	if t.wd.ShouldDefer(ctx) {
		return resp, nil
	}

	prefix, restoreErr := peekBody(resp)
	if restoreErr != nil {
		return resp, nil
	}
	if hasExpiryPhrase(prefix) {
		go t.wd.ForceLogout(ctx, "expired token response")
	}
	return resp, nil
}

// peekBody reads up to peekLimit bytes of the response body and reattaches
// them so downstream readers see the untouched stream.
func peekBody(resp *http.Response) (string, error) {
	if resp.Body == nil {
		return "", nil
	}
	prefix, err := io.ReadAll(io.LimitReader(resp.Body, peekLimit))
	if err != nil {
		resp.Body.Close()
		return "", err
	}
	rest := resp.Body
	resp.Body = &replayBody{
		Reader: io.MultiReader(bytes.NewReader(prefix), rest),
		closer: rest,
	}
	return string(prefix), nil
}

type replayBody struct {
	io.Reader
	closer io.Closer
}

func (b *replayBody) Close() error { return b.closer.Close() }

var installMu sync.Mutex

// Install wraps the client's transport with the watchdog interceptor.
// Idempotent: a client already carrying a watchdog Transport is left alone,
// so double installation can never double-trigger logouts or double-read
// bodies.
func Install(client *http.Client, wd *Watchdog) {
	installMu.Lock()
	defer installMu.Unlock()

	base := client.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	if _, already := base.(*Transport); already {
		return
	}
	client.Transport = &Transport{base: base, wd: wd}
}
