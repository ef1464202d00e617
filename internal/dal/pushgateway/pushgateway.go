package pushgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/corray333/shopline/notify/internal/service/models/event"
	"github.com/spf13/viper"
)

// Client talks to the external push notification gateway. The provider is
// treated as unreliable: calls carry their own timeout and failures are the
// caller's to log and swallow.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
}

// SendResult is the gateway's acknowledgement of a send.
type SendResult struct {
	RecipientCount    int    `json:"recipientCount"`
	ProviderMessageID string `json:"providerMessageId"`
}

type sendRequest struct {
	Targets []string          `json:"targets"`
	Title   string            `json:"title"`
	Body    string            `json:"body"`
	Data    map[string]string `json:"data,omitempty"`
}

// NewClient creates a push gateway client.
func NewClient() *Client {
	timeoutSeconds := viper.GetInt("push_gateway.timeout_seconds")
	if timeoutSeconds == 0 {
		timeoutSeconds = 10
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSeconds) * time.Second,
		},
		endpoint: viper.GetString("push_gateway.endpoint"),
		apiKey:   os.Getenv("PUSH_GATEWAY_API_KEY"),
	}
}

// Send delivers one payload to the given device targets.
func (c *Client) Send(
	ctx context.Context,
	targets []string,
	payload event.Payload,
) (SendResult, error) {
	body, err := json.Marshal(sendRequest{
		Targets: targets,
		Title:   payload.Title,
		Body:    payload.Body,
		Data:    payload.Data,
	})
	if err != nil {
		return SendResult{}, fmt.Errorf("failed to marshal push request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return SendResult{}, fmt.Errorf("failed to build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return SendResult{}, fmt.Errorf("push gateway call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return SendResult{}, fmt.Errorf("push gateway returned status %d", resp.StatusCode)
	}

	var result SendResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return SendResult{}, fmt.Errorf("malformed push gateway response: %w", err)
	}

	return result, nil
}
