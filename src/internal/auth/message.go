package auth

import (
	"bytes"
	"encoding/json"
)

// Device login endpoints.
const (
	loginPagePath = "/html/index.html"
	noncePath     = "/api/system/user_login_nonce"
	proofPath     = "/api/system/user_login_proof"
)

// csrfEnvelope is the anti-forgery pair the device requires on every
// state-changing request.
type csrfEnvelope struct {
	Param string `json:"csrf_param"`
	Token string `json:"csrf_token"`
}

// nonceRequest initiates the challenge exchange.
type nonceRequest struct {
	CSRF csrfEnvelope `json:"csrf"`
	Data nonceData    `json:"data"`
}

type nonceData struct {
	Username   string `json:"username"`
	FirstNonce string `json:"firstnonce"`
}

// proofRequest submits the client proof for verification.
type proofRequest struct {
	CSRF csrfEnvelope `json:"csrf"`
	Data proofData    `json:"data"`
}

type proofData struct {
	ClientProof string `json:"clientproof"`
	FinalNonce  string `json:"finalnonce"`
}

// apiStatus captures the device's error indicators. The firmware is
// inconsistent about the type: err/errcode may be a number, a string,
// or absent entirely, so both are kept raw and tested for truthiness.
type apiStatus struct {
	Err     json.RawMessage `json:"err"`
	ErrCode json.RawMessage `json:"errcode"`
}

func (s apiStatus) failed() bool {
	return truthy(s.Err) || truthy(s.ErrCode)
}

// truthy reports whether a raw JSON value signals an error the way the
// device firmware means it: present and not null/0/""/false.
func truthy(raw json.RawMessage) bool {
	v := bytes.TrimSpace(raw)
	switch string(v) {
	case "", "null", "0", `""`, "false":
		return false
	}
	return true
}

// challengeResponse is the nonce endpoint's success payload.
type challengeResponse struct {
	apiStatus
	Salt        string `json:"salt"`
	Iterations  int    `json:"iterations"`
	ServerNonce string `json:"servernonce"`
	FirstNonce  string `json:"firstnonce"`
}
