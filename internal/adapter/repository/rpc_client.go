package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"efris-bridge/internal/metrics"
	"efris-bridge/pkg/logger"
)

// Caller invokes a whitelisted ERP method and decodes its "message" into out.
// A nil out discards the message.
type Caller interface {
	Call(ctx context.Context, method string, args any, out any) error
}

// RemoteError is an error reported by the ERP for a method call.
type RemoteError struct {
	Method     string
	StatusCode int
	ExcType    string
	Message    string
}

func (e *RemoteError) Error() string {
	if e.ExcType != "" {
		return fmt.Sprintf("%s: %s: %s", e.Method, e.ExcType, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Method, e.Message)
}

// RPCClient talks to the ERP method endpoint: POST {base}/api/method/{method}.
type RPCClient struct {
	baseURL    string
	apiKey     string
	apiSecret  string
	httpClient *http.Client
	log        *logger.Logger
	metrics    *metrics.Metrics
}

type methodResponse struct {
	Message json.RawMessage `json:"message"`
}

type methodError struct {
	ExcType        string `json:"exc_type"`
	Exception      string `json:"exception"`
	ServerMessages string `json:"_server_messages"`
}

func NewRPCClient(baseURL, apiKey, apiSecret string, timeout time.Duration, log *logger.Logger, m *metrics.Metrics) *RPCClient {
	return &RPCClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		apiSecret: apiSecret,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log:     log,
		metrics: m,
	}
}

func (c *RPCClient) Call(ctx context.Context, method string, args any, out any) error {
	err := c.call(ctx, method, args, out)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.metrics.RemoteCallsTotal.WithLabelValues(method, outcome).Inc()
	return err
}

func (c *RPCClient) call(ctx context.Context, method string, args any, out any) error {
	body, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("failed to encode arguments: %w", err)
	}

	url := fmt.Sprintf("%s/api/method/%s", c.baseURL, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("token %s:%s", c.apiKey, c.apiSecret))
	}

	c.log.Debug("Calling ERP method", "method", method)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return decodeRemoteError(method, resp.StatusCode, payload)
	}

	if out == nil {
		return nil
	}
	var envelope methodResponse
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if len(envelope.Message) == 0 || string(envelope.Message) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope.Message, out); err != nil {
		return fmt.Errorf("failed to decode %s message: %w", method, err)
	}
	return nil
}

func decodeRemoteError(method string, status int, payload []byte) error {
	remote := &RemoteError{Method: method, StatusCode: status}

	var body methodError
	if err := json.Unmarshal(payload, &body); err == nil {
		remote.ExcType = body.ExcType
		remote.Message = lastLine(body.Exception)
		if remote.Message == "" {
			remote.Message = serverMessage(body.ServerMessages)
		}
	}
	if remote.Message == "" {
		remote.Message = fmt.Sprintf("API returned non-OK status: %d", status)
	}
	return remote
}

// serverMessage extracts the first message from the doubly encoded _server_messages list.
func serverMessage(raw string) string {
	if raw == "" {
		return ""
	}
	var encoded []string
	if err := json.Unmarshal([]byte(raw), &encoded); err != nil || len(encoded) == 0 {
		return ""
	}
	var msg struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(encoded[0]), &msg); err != nil {
		return encoded[0]
	}
	return msg.Message
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndex(s, "\n"); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}
