package repository

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"efris-bridge/internal/metrics"
	"efris-bridge/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*RPCClient, *metrics.Metrics) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	m := metrics.NewMetrics(prometheus.NewRegistry())
	return NewRPCClient(server.URL+"/", "key", "secret", 5*time.Second, logger.NewNop(), m), m
}

func TestRPCClient_Call(t *testing.T) {
	var gotPath, gotAuth string
	var gotArgs map[string]string

	client, m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotArgs)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message": {"name": "CUST-0001"}}`))
	})

	var out struct {
		Name string `json:"name"`
	}
	err := client.Call(context.Background(), "frappe.client.get_value", map[string]string{"doctype": "Customer"}, &out)
	require.NoError(t, err)

	assert.Equal(t, "/api/method/frappe.client.get_value", gotPath)
	assert.Equal(t, "token key:secret", gotAuth)
	assert.Equal(t, "Customer", gotArgs["doctype"])
	assert.Equal(t, "CUST-0001", out.Name)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RemoteCallsTotal.WithLabelValues("frappe.client.get_value", "ok")))
}

func TestRPCClient_NullMessageLeavesOutUntouched(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message": null}`))
	})

	out := "unchanged"
	require.NoError(t, client.Call(context.Background(), "m", nil, &out))
	assert.Equal(t, "unchanged", out)
}

func TestRPCClient_RemoteErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantExcType string
		wantMessage string
	}{
		{
			name:        "exception trace",
			status:      http.StatusExpectationFailed,
			body:        `{"exc_type": "ValidationError", "exception": "Traceback\nfrappe.exceptions.ValidationError: Invalid TIN"}`,
			wantExcType: "ValidationError",
			wantMessage: "frappe.exceptions.ValidationError: Invalid TIN",
		},
		{
			name:        "server messages",
			status:      http.StatusForbidden,
			body:        `{"exc_type": "PermissionError", "_server_messages": "[\"{\\\"message\\\": \\\"Not permitted\\\"}\"]"}`,
			wantExcType: "PermissionError",
			wantMessage: "Not permitted",
		},
		{
			name:        "non json body",
			status:      http.StatusBadGateway,
			body:        `<html>bad gateway</html>`,
			wantMessage: "API returned non-OK status: 502",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			err := client.Call(context.Background(), "some.method", nil, nil)
			require.Error(t, err)

			var remote *RemoteError
			require.True(t, errors.As(err, &remote))
			assert.Equal(t, tt.status, remote.StatusCode)
			assert.Equal(t, tt.wantExcType, remote.ExcType)
			assert.Equal(t, tt.wantMessage, remote.Message)
			assert.Equal(t, 1.0, testutil.ToFloat64(m.RemoteCallsTotal.WithLabelValues("some.method", "error")))
		})
	}
}

func TestRPCClient_ContextCanceled(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message": "ok"}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.Call(ctx, "m", nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

type countingCaller struct {
	methods []string
}

func (c *countingCaller) Call(ctx context.Context, method string, args any, out any) error {
	c.methods = append(c.methods, method)
	return nil
}

func TestMethodFilter(t *testing.T) {
	next := &countingCaller{}
	filter := NewMethodFilter(next, []string{"frappe.utils.change_log.show_update_popup"}, logger.NewNop())

	require.NoError(t, filter.Call(context.Background(), "frappe.utils.change_log.show_update_popup", nil, nil))
	require.NoError(t, filter.Call(context.Background(), MethodGetExchangeRate, nil, nil))

	assert.Equal(t, []string{MethodGetExchangeRate}, next.methods)
}

func TestNewMethodFilter_WrapsOnce(t *testing.T) {
	next := &countingCaller{}
	first := NewMethodFilter(next, []string{"a"}, logger.NewNop())
	second := NewMethodFilter(first, []string{"b"}, logger.NewNop())

	assert.Same(t, first, second)

	for _, m := range []string{"a", "b", "c"} {
		require.NoError(t, second.Call(context.Background(), m, nil, nil))
	}
	assert.Equal(t, []string{"c"}, next.methods)
}
