package hitlog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	httpClient "github.com/Alias1177/Scanner/internal/platform/http"
)

// WebhookUploader POSTs archived logs to a backup webhook
type WebhookUploader struct {
	url    string
	client *httpClient.Client
}

func NewWebhookUploader(url string, timeout time.Duration) *WebhookUploader {
	return &WebhookUploader{
		url: url,
		client: httpClient.NewClient(httpClient.ClientOptions{
			Timeout:        timeout,
			RequestsPerSec: 1,
		}),
	}
}

type uploadEnvelope struct {
	Date    string          `json:"date"`
	Payload json.RawMessage `json:"payload"`
}

// Upload wraps the archived file with its date and posts it
func (u *WebhookUploader) Upload(ctx context.Context, date string, payload []byte) error {
	body, err := json.Marshal(uploadEnvelope{Date: date, Payload: payload})
	if err != nil {
		return fmt.Errorf("encoding backup: %w", err)
	}
	if err := u.client.PostJSON(ctx, u.url, body); err != nil {
		return fmt.Errorf("uploading backup for %s: %w", date, err)
	}
	return nil
}
