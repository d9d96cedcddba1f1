package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/valyala/fasthttp"
	"golang.org/x/crypto/pbkdf2"
)

// computeProof derives the SCRAM-style client proof:
//
//	saltedPassword = PBKDF2-HMAC-SHA256(password, salt, iterations, 32)
//	clientKey      = HMAC-SHA256(saltedPassword, "Client Key")
//	storedKey      = SHA256(clientKey)
//	clientSig      = HMAC-SHA256(storedKey, authMessage)
//	clientProof    = clientKey XOR clientSig, hex encoded
//
// The proof demonstrates possession of the password without sending it;
// the device holds storedKey, recomputes clientSig, and un-XORs the
// proof back to clientKey for comparison.
func computeProof(password, saltHex string, iterations int, firstNonce, serverNonce string) (string, error) {
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return "", fmt.Errorf("invalid salt encoding: %w", err)
	}

	saltedPassword := pbkdf2.Key([]byte(password), salt, iterations, 32, sha256.New)
	clientKey := computeHMAC(saltedPassword, []byte("Client Key"))
	storedKey := sha256.Sum256(clientKey)

	authMessage := buildAuthMessage(firstNonce, serverNonce)
	clientSignature := computeHMAC(storedKey[:], []byte(authMessage))

	return hex.EncodeToString(xorBytes(clientKey, clientSignature)), nil
}

// buildAuthMessage assembles the message the signature covers. The
// device firmware uses the server nonce for both the second and third
// fields, where standard SCRAM would use a client-final message.
// Reproduce it exactly; a corrected message fails verification against
// real hardware.
func buildAuthMessage(firstNonce, serverNonce string) string {
	return firstNonce + "," + serverNonce + "," + serverNonce
}

func computeHMAC(key, message []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(message)
	return mac.Sum(nil)
}

// xorBytes requires equal-length operands; clientKey and the signature
// are both SHA-256 outputs, so 32 bytes each.
func xorBytes(a, b []byte) []byte {
	if len(a) != len(b) {
		panic("xor length mismatch")
	}
	result := make([]byte, len(a))
	for i := range a {
		result[i] = a[i] ^ b[i]
	}
	return result
}

// runProof computes the client proof from the negotiated parameters
// and submits it for verification. An HTTP 200 without err/errcode
// means the device accepted the password.
func (h *Handshake) runProof(ctx context.Context) error {
	if err := h.secrets.proofReady(); err != nil {
		return &ProtocolError{Stage: "proof", Reason: err.Error()}
	}

	proof, err := computeProof(
		h.secrets.password,
		h.secrets.saltHex,
		h.secrets.iterations,
		h.secrets.firstNonce,
		h.secrets.serverNonce,
	)
	if err != nil {
		return &ProtocolError{Stage: "proof", Reason: err.Error()}
	}

	req := proofRequest{
		CSRF: h.secrets.csrf(),
		Data: proofData{
			ClientProof: proof,
			FinalNonce:  h.secrets.serverNonce,
		},
	}

	status, body, err := h.transport.PostJSON(ctx, proofPath, req)
	if err != nil {
		return err
	}
	if status != fasthttp.StatusOK {
		return &ProtocolError{Stage: "proof", Status: status, Reason: "proof verification rejected"}
	}

	var result apiStatus
	if err := json.Unmarshal(body, &result); err != nil {
		return &ProtocolError{Stage: "proof", Reason: fmt.Sprintf("malformed verification response: %v", err)}
	}
	if result.failed() {
		return &ProtocolError{Stage: "proof", Reason: "device rejected the client proof"}
	}
	return nil
}
