package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/nrhodes/burstqueue/pkg/models"
)

// webhookTimeout bounds every outbound validation/commit call. The teacher
// has no outbound webhook of its own to imitate; this follows the corpus's
// general practice of a context-bound, timeout-bound client rather than an
// http.DefaultClient with no deadline.
const webhookTimeout = 10 * time.Second

// webhookClient posts a payload with the idempotency-key header spec.md §6
// requires of both the validation and commit webhooks.
type webhookClient struct {
	http *http.Client
}

func newWebhookClient() *webhookClient {
	return &webhookClient{http: &http.Client{Timeout: webhookTimeout}}
}

// post reports success as 2xx and treats everything else — non-2xx,
// timeout, connection failure — as transient, per spec.md §4.4(d)/(e).
func (c *webhookClient) post(ctx context.Context, url, idempotencyKey string, payload models.IntakePayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshal webhook payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build webhook request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Idempotency-Key", idempotencyKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return errTransient(errors.Wrapf(err, "webhook call to %s", url))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errTransient(errors.Newf("webhook %s returned status %d", url, resp.StatusCode))
	}
	return nil
}
