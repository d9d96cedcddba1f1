package auth

import (
	"context"
	"fmt"

	"github.com/lixenwraith/log"
)

// Transport is the capability the handshake needs from the HTTP layer:
// one GET and one JSON POST per stage against a fixed base URL, with
// cookies persisted across calls within the session.
type Transport interface {
	Get(ctx context.Context, path string) (status int, body []byte, err error)
	PostJSON(ctx context.Context, path string, body any) (status int, respBody []byte, err error)
}

// State tracks the handshake's progress through its fixed sequence.
type State int

const (
	StateInit State = iota
	StateCSRFOK
	StateNonceOK
	StateProofOK
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateCSRFOK:
		return "csrf_ok"
	case StateNonceOK:
		return "nonce_ok"
	case StateProofOK:
		return "proof_ok"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ProtocolError is a handshake failure the device signalled: an
// unexpected status code, a missing token, or an error field in an
// otherwise well-formed response. Transport failures are returned
// unwrapped so callers can tell the two apart.
type ProtocolError struct {
	Stage  string
	Status int
	Reason string
}

func (e *ProtocolError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s stage failed (status %d): %s", e.Stage, e.Status, e.Reason)
	}
	return fmt.Sprintf("%s stage failed: %s", e.Stage, e.Reason)
}

// Handshake performs the device's three-stage SCRAM-style login:
// CSRF token acquisition, nonce negotiation, then proof verification.
// Each stage runs only if the previous one succeeded; the first
// failure aborts the rest. A Handshake is single-use — a failed login
// is retried by building a new Handshake, never by rerunning this one.
type Handshake struct {
	transport Transport
	secrets   *Secrets
	logger    *log.Logger
	state     State
}

// NewHandshake prepares a login attempt with fresh handshake state.
func NewHandshake(t Transport, username, password string, logger *log.Logger) *Handshake {
	return &Handshake{
		transport: t,
		secrets:   NewSecrets(username, password),
		logger:    logger,
		state:     StateInit,
	}
}

// Login drives the handshake to completion. It returns nil exactly
// when the device accepted the proof; any error leaves the handshake
// in the failed state.
func (h *Handshake) Login(ctx context.Context) error {
	if h.state != StateInit {
		return fmt.Errorf("handshake already ran (state %s); start a new attempt", h.state)
	}

	stages := []struct {
		name string
		next State
		run  func(context.Context) error
	}{
		{"csrf", StateCSRFOK, h.runCSRF},
		{"nonce", StateNonceOK, h.runNonce},
		{"proof", StateProofOK, h.runProof},
	}

	for _, stage := range stages {
		if err := stage.run(ctx); err != nil {
			h.state = StateFailed
			h.logger.Warn("msg", "Login handshake failed",
				"component", "auth",
				"stage", stage.name,
				"error", err)
			return err
		}
		h.state = stage.next
		h.logger.Debug("msg", "Handshake stage complete",
			"component", "auth",
			"stage", stage.name,
			"state", h.state.String())
	}

	h.logger.Info("msg", "Login handshake complete",
		"component", "auth",
		"username", h.secrets.username)
	return nil
}

// Authenticated reports whether the handshake reached its success
// terminal state.
func (h *Handshake) Authenticated() bool {
	return h.state == StateProofOK
}

// State returns the handshake's current position in the sequence.
func (h *Handshake) State() State {
	return h.state
}
