// Package apiclient calls the defect-tracking backend, one method per endpoint.
// Calls are single attempts: no retry, no cache.
package apiclient

import (
	"bytes"
	"context"
	"defectboard/common"
	"defectboard/infra/tracing"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{
		Timeout:   timeout,
		Transport: tracing.NewTracingTransport(http.DefaultTransport),
	})
}

func NewWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

var envelopeFailures = map[string]bool{"error": true, "failure": true, "fail": true}
var envelopeStatuses = map[string]bool{"success": true, "ok": true, "error": true, "failure": true, "fail": true}

// doJSON sends body as JSON and decodes the unwrapped payload into result.
// A nil result discards the payload.
func (c *Client) doJSON(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logrus.WithField("path", path).WithError(err).Warn("backend unreachable")
		return networkError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return networkError(err)
	}

	if !common.HttpStatusIsSuccess(resp.StatusCode) {
		return statusError(resp.StatusCode, path, backendMessage(respBody))
	}
	return unwrap(resp.StatusCode, respBody, result)
}

// unwrap decodes a 2xx body, unwrapping {status, message, data, statusCode} envelopes.
func unwrap(status int, body []byte, result interface{}) error {
	payload := body
	if fields := objectFields(body); fields != nil {
		var envelopeStatus string
		_ = json.Unmarshal(fields["status"], &envelopeStatus)
		_, hasData := fields["data"]

		if envelopeStatuses[strings.ToLower(envelopeStatus)] || hasData {
			if envelopeFailures[strings.ToLower(envelopeStatus)] {
				message := backendMessage(body)
				if message == "" {
					message = fmt.Sprintf("Request failed with status %d", status)
				}
				return &Error{Kind: KindBackend, StatusCode: status, Message: message}
			}
			payload = fields["data"]
		}
	}

	if result == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, result); err != nil {
		return &Error{Kind: KindUnknown, StatusCode: status, Message: fmt.Sprintf("Unexpected response format (status %d)", status), Cause: err}
	}
	return nil
}

func objectFields(body []byte) map[string]json.RawMessage {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil
	}
	return fields
}

func backendMessage(body []byte) string {
	fields := objectFields(body)
	if fields == nil {
		return ""
	}
	for _, key := range []string{"message", "error"} {
		var message string
		if json.Unmarshal(fields[key], &message) == nil && message != "" {
			return message
		}
	}
	return ""
}
