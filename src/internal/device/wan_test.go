package device

import (
	"context"
	"fmt"
	"testing"

	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTransport struct {
	status int
	body   string
	err    error
	calls  []string
}

func (s *staticTransport) Get(_ context.Context, path string) (int, []byte, error) {
	s.calls = append(s.calls, path)
	return s.status, []byte(s.body), s.err
}

func (s *staticTransport) PostJSON(_ context.Context, _ string, _ any) (int, []byte, error) {
	return 0, nil, fmt.Errorf("unexpected POST")
}

func newTestLogger() *log.Logger {
	return log.NewLogger()
}

func TestDetectWAN(t *testing.T) {
	tr := &staticTransport{
		status: 200,
		body:   `{"ExternalIPAddress":"203.0.113.7","AccessType":"Ethernet","ConnectionStatus":"Connected"}`,
	}

	info, err := DetectWAN(context.Background(), tr, newTestLogger())
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.7", info.ExternalIPAddress)
	assert.Equal(t, "Ethernet", info.AccessType)
	assert.Equal(t, "Connected", info.ConnectionStatus)
	assert.Equal(t, []string{"/api/ntwk/wandetect"}, tr.calls)
}

func TestDetectWANFailures(t *testing.T) {
	testCases := []struct {
		name string
		tr   *staticTransport
	}{
		{"TransportError", &staticTransport{err: fmt.Errorf("connection reset")}},
		{"Non200", &staticTransport{status: 403, body: "{}"}},
		{"MalformedJSON", &staticTransport{status: 200, body: "<html>"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			info, err := DetectWAN(context.Background(), tc.tr, newTestLogger())
			assert.Error(t, err)
			assert.Nil(t, info)
		})
	}
}
