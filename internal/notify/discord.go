// Package notify delivers per-cycle statistics to a Discord webhook.
// Delivery is best effort: one attempt per cycle, no retry queue. A
// circuit breaker sheds attempts while the webhook keeps failing so a dead
// endpoint does not burn every cycle's time budget.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/hush-bush/metadao-monitor/internal/monitor"
)

// statsColor is the embed accent color for statistics messages.
const statsColor = 0x3498db

// Field, Footer and Embed mirror the Discord webhook embed schema.
type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type Footer struct {
	Text string `json:"text"`
}

type Embed struct {
	Title  string  `json:"title"`
	Color  int     `json:"color"`
	Fields []Field `json:"fields"`
	Footer *Footer `json:"footer,omitempty"`
}

type message struct {
	Content string  `json:"content"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

// Client posts messages to a Discord webhook.
type Client struct {
	webhookURL string
	address    string
	symbol     string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

// NewClient creates a webhook client for the monitored address. The
// address and symbol only affect message formatting.
func NewClient(webhookURL, address, symbol string, logger *zap.Logger) *Client {
	return &Client{
		webhookURL: webhookURL,
		address:    address,
		symbol:     symbol,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(1), 3),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:     "DiscordWebhook",
			Interval: 60 * time.Second,
			Timeout:  30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 5
			},
		}),
		logger: logger,
	}
}

// SendStats formats the statistics embed and posts it. Windows absent from
// stats (not enough elapsed time) are omitted from the embed entirely.
func (c *Client) SendStats(ctx context.Context, balance float64, stats monitor.Stats) error {
	return c.Send(ctx, "", []Embed{c.buildStatsEmbed(balance, stats)})
}

func (c *Client) buildStatsEmbed(balance float64, stats monitor.Stats) Embed {
	fields := []Field{
		{Name: "💰 Current balance", Value: c.amount(balance)},
		{Name: "⏱️ Last 5 minutes", Value: c.amount(stats.Last5Min)},
	}
	if stats.Last15Min != nil {
		fields = append(fields, Field{Name: "⏱️ Last 15 minutes", Value: c.amount(*stats.Last15Min)})
	}
	if stats.LastHour != nil {
		fields = append(fields, Field{Name: "⏱️ Last hour", Value: c.amount(*stats.LastHour)})
	}
	if stats.Last24Hours != nil {
		fields = append(fields, Field{Name: "⏱️ Last 24 hours", Value: c.amount(*stats.Last24Hours)})
	}

	return Embed{
		Title:  fmt.Sprintf("📊 %s collection statistics", c.symbol),
		Color:  statsColor,
		Fields: fields,
		Footer: &Footer{Text: "Address: " + TruncateAddress(c.address)},
	}
}

func (c *Client) amount(v float64) string {
	return monitor.FormatAmount(v) + " " + c.symbol
}

// Send posts a message with optional embeds. Non-2xx responses and
// transport errors are returned to the caller; nothing is retried.
func (c *Client) Send(ctx context.Context, content string, embeds []Embed) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	body, err := json.Marshal(message{Content: content, Embeds: embeds})
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	requestID := uuid.New().String()
	start := time.Now()

	_, err = c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("webhook returned status %d", resp.StatusCode)
		}
		return nil, nil
	})
	if err != nil {
		c.logger.Warn("Webhook delivery failed",
			zap.String("request_id", requestID),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.Error(err))
		return err
	}

	c.logger.Debug("Webhook delivered",
		zap.String("request_id", requestID),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()))
	return nil
}

// TruncateAddress shortens a wallet address for display: first 8 and last
// 8 characters joined by an ellipsis marker.
func TruncateAddress(addr string) string {
	if len(addr) <= 16 {
		return addr
	}
	return addr[:8] + "..." + addr[len(addr)-8:]
}
