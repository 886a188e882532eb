package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sentinel-surveillance/core/pkg/clock"
)

// ChatChannel posts severity-formatted block messages to a webhook URL.
type ChatChannel struct {
	WebhookURL string
	ChannelRef string
	HTTPClient *http.Client
	Clock      clock.Clock

	mu            sync.Mutex
	lastSeen      map[string]time.Time
	dedupWindow   time.Duration
}

// NewChatChannel constructs a chat channel adapter with the given
// alert-id deduplication window.
func NewChatChannel(webhookURL, channelRef string, dedupWindow time.Duration, c clock.Clock) *ChatChannel {
	if c == nil {
		c = clock.Real{}
	}
	return &ChatChannel{
		WebhookURL:  webhookURL,
		ChannelRef:  channelRef,
		HTTPClient:  &http.Client{Timeout: 10 * time.Second},
		Clock:       c,
		lastSeen:    make(map[string]time.Time),
		dedupWindow: dedupWindow,
	}
}

func (c *ChatChannel) Name() string { return "chat" }

// Send posts the formatted alert to the configured webhook. A duplicate
// alert_id seen again within the configured dedup window is treated as
// already delivered (ok=true, no network call) — this is the §4.3
// "idempotent at the alert-id level" guarantee.
func (c *ChatChannel) Send(ctx context.Context, a Alert) (bool, error) {
	if c.seenRecently(a.AlertID) {
		return true, nil
	}

	payload := c.constructPayload(a)
	body, err := json.Marshal(payload)
	if err != nil {
		return false, fmt.Errorf("chat channel: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("chat channel: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("chat channel: send webhook: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("chat channel: non-200 response: %d", resp.StatusCode)
	}

	c.markSeen(a.AlertID)
	return true, nil
}

func (c *ChatChannel) seenRecently(alertID string) bool {
	if alertID == "" {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.Clock.Now()
	c.pruneLocked(now)
	last, ok := c.lastSeen[alertID]
	return ok && now.Sub(last) < c.dedupWindow
}

func (c *ChatChannel) markSeen(alertID string) {
	if alertID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastSeen[alertID] = c.Clock.Now()
}

// pruneLocked drops entries older than the dedup window. Caller must hold
// c.mu.
func (c *ChatChannel) pruneLocked(now time.Time) {
	for id, seenAt := range c.lastSeen {
		if now.Sub(seenAt) >= c.dedupWindow {
			delete(c.lastSeen, id)
		}
	}
}

// constructPayload builds the Block-Kit-style structure for a into the
// webhook's expected envelope, attaching the channel override when set.
func (c *ChatChannel) constructPayload(a Alert) map[string]interface{} {
	formatted := Format(a)
	blocks := make([]map[string]interface{}, 0, len(formatted.Blocks))
	for _, b := range formatted.Blocks {
		block := map[string]interface{}{"type": b.Kind}
		if b.Text != nil {
			block["text"] = b.Text
		}
		if len(b.Elements) > 0 {
			block["elements"] = b.Elements
		}
		if len(b.Fields) > 0 {
			block["fields"] = b.Fields
		}
		blocks = append(blocks, block)
	}

	payload := map[string]interface{}{
		"blocks": blocks,
		"color":  formatted.Color,
	}
	if c.ChannelRef != "" {
		payload["channel"] = c.ChannelRef
	}
	return payload
}
