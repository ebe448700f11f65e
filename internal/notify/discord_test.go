package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hush-bush/metadao-monitor/internal/monitor"
)

const testAddress = "9ApaAe39Z8GEXfqm7F7HL545N4J4tN7RhF8FhS88pRNp"

func f64(v float64) *float64 { return &v }

func TestSendStatsPayloadShape(t *testing.T) {
	var got message
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := NewClient(server.URL, testAddress, "USDC", zap.NewNop())

	stats := monitor.Stats{
		Last5Min:  50.0,
		Last15Min: f64(125.5),
		Total:     1234567.5,
	}
	require.NoError(t, c.SendStats(context.Background(), 2000.0, stats))

	require.Len(t, got.Embeds, 1)
	embed := got.Embeds[0]
	assert.Equal(t, "📊 USDC collection statistics", embed.Title)
	assert.Equal(t, 0x3498db, embed.Color)

	// Balance, 5m and 15m present; 1h and 24h omitted (not elapsed yet).
	require.Len(t, embed.Fields, 3)
	assert.Equal(t, "💰 Current balance", embed.Fields[0].Name)
	assert.Equal(t, "2 000 USDC", embed.Fields[0].Value)
	assert.Equal(t, "⏱️ Last 5 minutes", embed.Fields[1].Name)
	assert.Equal(t, "50 USDC", embed.Fields[1].Value)
	assert.Equal(t, "⏱️ Last 15 minutes", embed.Fields[2].Name)
	assert.Equal(t, "125.5 USDC", embed.Fields[2].Value)

	require.NotNil(t, embed.Footer)
	assert.Equal(t, "Address: 9ApaAe39...hS88pRNp", embed.Footer.Text)
}

func TestSendStatsAllWindows(t *testing.T) {
	var got message
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := NewClient(server.URL, testAddress, "USDC", zap.NewNop())

	stats := monitor.Stats{
		Last5Min:    1.0,
		Last15Min:   f64(2.0),
		LastHour:    f64(3.0),
		Last24Hours: f64(4.0),
		Total:       10.0,
	}
	require.NoError(t, c.SendStats(context.Background(), 100.0, stats))
	require.Len(t, got.Embeds, 1)
	assert.Len(t, got.Embeds[0].Fields, 5)
}

func TestSendReturnsErrorOnServerFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewClient(server.URL, testAddress, "USDC", zap.NewNop())

	err := c.Send(context.Background(), "hello", nil)
	assert.ErrorContains(t, err, "500")
}

func TestSendReturnsErrorWhenUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	c := NewClient(server.URL, testAddress, "USDC", zap.NewNop())

	assert.Error(t, c.Send(context.Background(), "hello", nil))
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewClient(server.URL, testAddress, "USDC", zap.NewNop())
	c.limiter.SetLimit(1000) // don't slow the test down

	for i := 0; i < 10; i++ {
		assert.Error(t, c.Send(context.Background(), "x", nil))
	}
	assert.Equal(t, "open", c.breaker.State().String())
}

func TestTruncateAddress(t *testing.T) {
	assert.Equal(t, "9ApaAe39...hS88pRNp", TruncateAddress(testAddress))
	assert.Equal(t, "short", TruncateAddress("short"))
	assert.Equal(t, "exactly16chars!!", TruncateAddress("exactly16chars!!"))
}
