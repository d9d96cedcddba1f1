package device

import (
	"context"
	"encoding/json"
	"fmt"

	"hwrouter/src/internal/auth"

	"github.com/lixenwraith/log"
	"github.com/valyala/fasthttp"
)

const wanDetectPath = "/api/ntwk/wandetect"

// WANInfo is the device's view of its upstream connection.
type WANInfo struct {
	ExternalIPAddress string `json:"ExternalIPAddress"`
	AccessType        string `json:"AccessType"`
	ConnectionStatus  string `json:"ConnectionStatus"`
}

// DetectWAN queries the device's WAN detection endpoint. The endpoint
// requires an authenticated session; call it only after a successful
// login handshake on the same transport.
func DetectWAN(ctx context.Context, t auth.Transport, logger *log.Logger) (*WANInfo, error) {
	status, body, err := t.Get(ctx, wanDetectPath)
	if err != nil {
		return nil, err
	}
	if status != fasthttp.StatusOK {
		return nil, fmt.Errorf("wan detection returned status %d", status)
	}

	var info WANInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("malformed wan detection response: %w", err)
	}

	logger.Debug("msg", "WAN detection complete",
		"component", "device",
		"access_type", info.AccessType,
		"connection_status", info.ConnectionStatus)
	return &info, nil
}
