package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/valyala/fasthttp"
)

// generateNonce produces the client's contribution to the challenge:
// 32 random bytes as 64 hex characters. 256 bits of entropy makes a
// collision between two attempts practically impossible.
func generateNonce() (string, error) {
	nonce := make([]byte, 32)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	return hex.EncodeToString(nonce), nil
}

// runNonce sends the client identity and nonce, and records the
// server's challenge: salt, iteration count, and server nonce. The
// device reports rejection via err/errcode fields on an HTTP 200, so
// both the status code and the payload are checked.
func (h *Handshake) runNonce(ctx context.Context) error {
	nonce, err := generateNonce()
	if err != nil {
		return err
	}
	if err := h.secrets.setFirstNonce(nonce); err != nil {
		return err
	}

	req := nonceRequest{
		CSRF: h.secrets.csrf(),
		Data: nonceData{
			Username:   h.secrets.username,
			FirstNonce: h.secrets.firstNonce,
		},
	}

	status, body, err := h.transport.PostJSON(ctx, noncePath, req)
	if err != nil {
		return err
	}
	if status != fasthttp.StatusOK {
		return &ProtocolError{Stage: "nonce", Status: status, Reason: "nonce negotiation rejected"}
	}

	var challenge challengeResponse
	if err := json.Unmarshal(body, &challenge); err != nil {
		return &ProtocolError{Stage: "nonce", Reason: fmt.Sprintf("malformed challenge response: %v", err)}
	}
	if challenge.failed() {
		return &ProtocolError{Stage: "nonce", Reason: "device reported an error for the nonce request"}
	}
	if challenge.Salt == "" || challenge.ServerNonce == "" || challenge.Iterations <= 0 {
		return &ProtocolError{Stage: "nonce", Reason: "challenge response missing salt, iterations, or server nonce"}
	}

	return h.secrets.setChallenge(challenge.Salt, challenge.Iterations, challenge.ServerNonce)
}
