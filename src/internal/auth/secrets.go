package auth

import (
	"fmt"
)

// Secrets is the progressively-populated state of one login handshake.
// Each stage writes its fields exactly once; a later stage never
// re-derives a value an earlier stage set. A Secrets instance belongs
// to a single handshake attempt and is discarded with it — a retry
// starts from a fresh instance.
//
// The password is deliberately unexported and carries no JSON tag
// anywhere in this package: it never leaves the process.
type Secrets struct {
	username string
	password string

	csrfParam string
	csrfToken string

	firstNonce  string
	serverNonce string
	saltHex     string
	iterations  int
}

// NewSecrets creates the empty state for one handshake attempt.
func NewSecrets(username, password string) *Secrets {
	return &Secrets{
		username: username,
		password: password,
	}
}

// setCSRF records the anti-forgery pair extracted from the login page.
func (s *Secrets) setCSRF(param, token string) error {
	if s.csrfParam != "" || s.csrfToken != "" {
		return fmt.Errorf("csrf pair already set")
	}
	if param == "" || token == "" {
		return fmt.Errorf("csrf pair incomplete")
	}
	s.csrfParam = param
	s.csrfToken = token
	return nil
}

// setFirstNonce records the locally generated client nonce.
func (s *Secrets) setFirstNonce(nonce string) error {
	if s.firstNonce != "" {
		return fmt.Errorf("client nonce already set")
	}
	if nonce == "" {
		return fmt.Errorf("client nonce empty")
	}
	s.firstNonce = nonce
	return nil
}

// setChallenge records the server's key-derivation parameters.
func (s *Secrets) setChallenge(saltHex string, iterations int, serverNonce string) error {
	if s.saltHex != "" || s.serverNonce != "" || s.iterations != 0 {
		return fmt.Errorf("server challenge already set")
	}
	if saltHex == "" || serverNonce == "" {
		return fmt.Errorf("server challenge incomplete")
	}
	if iterations <= 0 {
		return fmt.Errorf("iteration count must be positive, got %d", iterations)
	}
	s.saltHex = saltHex
	s.iterations = iterations
	s.serverNonce = serverNonce
	return nil
}

// proofReady verifies every input of the proof computation is present.
func (s *Secrets) proofReady() error {
	switch {
	case s.firstNonce == "":
		return fmt.Errorf("client nonce not set")
	case s.serverNonce == "":
		return fmt.Errorf("server nonce not set")
	case s.saltHex == "":
		return fmt.Errorf("salt not set")
	case s.iterations <= 0:
		return fmt.Errorf("iteration count not set")
	}
	return nil
}

func (s *Secrets) csrf() csrfEnvelope {
	return csrfEnvelope{Param: s.csrfParam, Token: s.csrfToken}
}
