package sink

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"assaultbrain/internal/analysis"
)

func testResult() *analysis.AnalysisResult {
	return &analysis.AnalysisResult{
		Fingerprint:    "abc123",
		WinProbability: 0.62,
		Confidence:     "high",
		Advice:         []string{"Scale to late game, you outscale them"},
		ItemPriorities: []string{"Rush antiheal (Divine Ruin / Toxic Blade), counter their healing"},
		KeyMatchups:    []string{"Ares counters Zeus"},
		VoiceSummary:   "Even match at 62 percent. Scale to late game, you outscale them",
		CreatedAt:      time.Now(),
	}
}

func TestWebhookSink_Publish(t *testing.T) {
	var received atomic.Pointer[WebhookPayload]

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var payload WebhookPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Errorf("Unmarshal payload: %v", err)
		}
		received.Store(&payload)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewWebhookSink(srv.URL)
	if err := sink.Publish(context.Background(), testResult()); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	payload := received.Load()
	if payload == nil || len(payload.Embeds) != 1 {
		t.Fatalf("Expected one embed, got %+v", payload)
	}

	embed := payload.Embeds[0]
	if embed.Title != "Assault Match Analysis" {
		t.Errorf("Title = %q", embed.Title)
	}
	if embed.Color != colorGreen {
		t.Errorf("Color = %d, want green for a 62%% matchup", embed.Color)
	}
	if embed.Fields[0].Value != "62%" {
		t.Errorf("Win probability field = %q, want 62%%", embed.Fields[0].Value)
	}
	if embed.Footer == nil || !strings.Contains(embed.Footer.Text, "62 percent") {
		t.Errorf("Footer should carry the voice summary, got %+v", embed.Footer)
	}
}

func TestWebhookSink_RetriesOnRateLimit(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewWebhookSink(srv.URL)
	if err := sink.Notify(context.Background(), "Incomplete roster", "only 4 names read"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("Expected 1 retry after 429, got %d calls", calls.Load())
	}
}

func TestWebhookSink_GivesUpOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sink := NewWebhookSink(srv.URL)
	if err := sink.Publish(context.Background(), testResult()); err == nil {
		t.Error("Expected an error on a 500 response")
	}
}

func TestNewAnalysisPayload_Colors(t *testing.T) {
	res := testResult()

	res.WinProbability = 0.40
	if p := NewAnalysisPayload(res); p.Embeds[0].Color != colorRed {
		t.Errorf("40%% should be red, got %d", p.Embeds[0].Color)
	}

	res.WinProbability = 0.50
	if p := NewAnalysisPayload(res); p.Embeds[0].Color != colorYellow {
		t.Errorf("50%% should be yellow, got %d", p.Embeds[0].Color)
	}
}
