package auth

import (
	"context"
	"regexp"

	"github.com/valyala/fasthttp"
)

// The login page embeds the anti-forgery pair as two 32-hex-char
// values near the csrf_param and csrf_token markers. Arbitrary markup,
// including newlines, may sit between them.
var csrfPattern = regexp.MustCompile(`(?s)csrf_param.*?([0-9a-fA-F]{32}).*?csrf_token.*?([0-9a-fA-F]{32})`)

// runCSRF fetches the login page and extracts the CSRF pair. The
// device also sets its session cookie on this response; the transport
// carries it into the two POSTs that follow. A page missing either
// token is a recoverable protocol failure, not a crash: the
// orchestrator short-circuits and the caller may retry with a fresh
// handshake.
func (h *Handshake) runCSRF(ctx context.Context) error {
	status, body, err := h.transport.Get(ctx, loginPagePath)
	if err != nil {
		return err
	}
	if status != fasthttp.StatusOK {
		return &ProtocolError{Stage: "csrf", Status: status, Reason: "login page unavailable"}
	}

	m := csrfPattern.FindSubmatch(body)
	if m == nil {
		return &ProtocolError{Stage: "csrf", Reason: "csrf tokens not found in login page"}
	}
	return h.secrets.setCSRF(string(m[1]), string(m[2]))
}
