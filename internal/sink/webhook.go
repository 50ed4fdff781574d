package sink

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"assaultbrain/internal/analysis"
)

const (
	// Colors for Discord embeds
	colorGreen  = 5763719  // favored matchup
	colorYellow = 16776960 // even matchup
	colorRed    = 15158332 // unfavored matchup

	defaultWebhookTimeout = 10 * time.Second

	// Max retries for rate limiting
	maxRetries = 3
)

// WebhookPayload represents a Discord webhook message
type WebhookPayload struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

// Embed represents a Discord embed
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

// EmbedField represents a field in a Discord embed
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// EmbedFooter represents the footer of a Discord embed
type EmbedFooter struct {
	Text string `json:"text"`
}

// NewAnalysisPayload builds the match report embed shared with the team.
func NewAnalysisPayload(res *analysis.AnalysisResult) WebhookPayload {
	pct := int(res.WinProbability * 100)
	color := colorYellow
	if pct >= 55 {
		color = colorGreen
	} else if pct <= 45 {
		color = colorRed
	}

	fields := []EmbedField{
		{Name: "Win Probability", Value: fmt.Sprintf("%d%%", pct), Inline: true},
		{Name: "Confidence", Value: res.Confidence, Inline: true},
	}
	if len(res.Advice) > 0 {
		fields = append(fields, EmbedField{Name: "Advice", Value: strings.Join(res.Advice, "\n")})
	}
	if len(res.ItemPriorities) > 0 {
		fields = append(fields, EmbedField{Name: "Item Priorities", Value: strings.Join(res.ItemPriorities, "\n")})
	}
	if len(res.KeyMatchups) > 0 {
		fields = append(fields, EmbedField{Name: "Key Matchups", Value: strings.Join(res.KeyMatchups, "\n")})
	}

	return WebhookPayload{
		Embeds: []Embed{
			{
				Title:     "Assault Match Analysis",
				Color:     color,
				Fields:    fields,
				Footer:    &EmbedFooter{Text: res.VoiceSummary},
				Timestamp: res.CreatedAt.UTC().Format(time.RFC3339),
			},
		},
	}
}

// NewEventPayload builds a minimal informational embed.
func NewEventPayload(event, detail string) WebhookPayload {
	return WebhookPayload{
		Embeds: []Embed{
			{
				Title:       event,
				Description: detail,
				Color:       colorYellow,
			},
		},
	}
}

// WebhookSink posts analysis results to a Discord webhook so the rest
// of the team sees the report too.
type WebhookSink struct {
	webhookURL string
	httpClient *http.Client
}

// NewWebhookSink creates a webhook sink for the given URL.
func NewWebhookSink(webhookURL string) *WebhookSink {
	return &WebhookSink{
		webhookURL: webhookURL,
		httpClient: &http.Client{
			Timeout: defaultWebhookTimeout,
		},
	}
}

// Publish sends the analysis embed.
func (c *WebhookSink) Publish(ctx context.Context, res *analysis.AnalysisResult) error {
	return c.sendPayload(ctx, NewAnalysisPayload(res))
}

// Notify sends an informational event embed.
func (c *WebhookSink) Notify(ctx context.Context, event, detail string) error {
	return c.sendPayload(ctx, NewEventPayload(event, detail))
}

// sendPayload sends a webhook payload with retry on rate limiting
func (c *WebhookSink) sendPayload(ctx context.Context, payload WebhookPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, "POST", c.webhookURL, bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		resp.Body.Close()

		// Success - Discord returns 204 No Content
		if resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusOK {
			return nil
		}

		// Rate limited - wait and retry
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := resp.Header.Get("Retry-After")
			waitDuration := time.Second // Default wait
			if retryAfter != "" {
				if seconds, err := strconv.Atoi(retryAfter); err == nil {
					waitDuration = time.Duration(seconds) * time.Second
				}
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(waitDuration):
				continue
			}
		}

		// Other error
		return fmt.Errorf("webhook request failed with status %d", resp.StatusCode)
	}

	return fmt.Errorf("webhook request failed after %d retries", maxRetries)
}
