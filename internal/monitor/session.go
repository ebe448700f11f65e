package monitor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const timeFormat = "2006-01-02 15:04:05"

// BalanceSource is the balance provider the session polls. Implementations
// return the current UI amount of the monitored token.
type BalanceSource interface {
	TokenBalance(ctx context.Context) (float64, error)
}

// Notifier receives the statistics produced by each cycle.
type Notifier interface {
	SendStats(ctx context.Context, balance float64, stats Stats) error
}

// SessionConfig contains configuration for a monitoring session.
type SessionConfig struct {
	Address      string        // monitored wallet address, display only
	TokenSymbol  string        // e.g. "USDC", display only
	Source       BalanceSource // balance provider
	Notifier     Notifier      // statistics sink
	Logger       *zap.Logger
	PollInterval time.Duration
	QueryTimeout time.Duration    // per balance query, defaults to 10s
	Now          func() time.Time // clock, injectable for tests
}

// Session is the monitoring loop for a single wallet. It detects income by
// diffing consecutive balance snapshots against a baseline, so within one
// poll interval only the net delta is observable: an outbound transfer
// followed by a larger inbound one shows up as a single smaller deposit,
// and any decrease (transfer out, fee, correction) just resets the
// baseline without being classified. This is an inherent limit of balance
// diffing, not transaction inspection.
type Session struct {
	cfg      SessionConfig
	history  *History
	logger   *zap.Logger
	baseline float64
	start    time.Time
}

// NewSession validates the configuration and creates a session. The
// session does nothing until Run is called.
func NewSession(cfg SessionConfig) (*Session, error) {
	if cfg.Source == nil {
		return nil, errors.New("balance source cannot be nil")
	}
	if cfg.Notifier == nil {
		return nil, errors.New("notifier cannot be nil")
	}
	if cfg.Address == "" {
		return nil, errors.New("address cannot be empty")
	}
	if cfg.PollInterval <= 0 {
		return nil, errors.New("poll interval must be positive")
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = 10 * time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.TokenSymbol == "" {
		cfg.TokenSymbol = "USDC"
	}

	return &Session{
		cfg:     cfg,
		logger:  cfg.Logger,
		history: NewHistory(cfg.Logger),
	}, nil
}

// Run executes the monitoring loop until ctx is cancelled. The first cycle
// runs immediately after the initial balance read; every later cycle is
// driven by the poll ticker. A failed cycle never terminates the loop.
func (s *Session) Run(ctx context.Context) error {
	s.printBanner()
	s.init(ctx)

	s.logger.Info("📊 Monitoring session started",
		zap.String("address", s.cfg.Address),
		zap.Float64("initial_balance", s.baseline),
		zap.Duration("interval", s.cfg.PollInterval))

	fmt.Printf("[%s] Initial balance: %s %s\n\n",
		s.start.Format(timeFormat), FormatAmount(s.baseline), s.cfg.TokenSymbol)

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	s.cycle(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Monitoring stopped",
				zap.Int("transfers_detected", s.history.Len()),
				zap.Float64("total_received", s.history.Total()))
			return nil
		case <-ticker.C:
			s.cycle(ctx)
		}
	}
}

// init captures the baseline and the session start time.
func (s *Session) init(ctx context.Context) {
	s.baseline = s.readBalance(ctx)
	s.start = s.cfg.Now()
}

// cycle runs one poll iteration: read balance, apply the delta to the
// baseline, print status and push statistics. Errors are handled inside;
// a panic is recovered at the cycle boundary so monitoring continues.
func (s *Session) cycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Cycle failed unexpectedly",
				zap.Any("panic", r),
				zap.Time("at", s.cfg.Now()))
		}
	}()

	now := s.cfg.Now()
	balance := s.readBalance(ctx)

	switch {
	case balance > s.baseline:
		received := balance - s.baseline
		s.history.Append(received, now)

		fmt.Printf("[%s] ⚠️  NEW INBOUND TRANSFER DETECTED!\n", now.Format(timeFormat))
		fmt.Printf("    Received: %s %s\n", FormatAmount(received), s.cfg.TokenSymbol)
		fmt.Printf("    Current balance: %s %s\n\n", FormatAmount(balance), s.cfg.TokenSymbol)

		s.logger.Info("💸 Inbound transfer detected",
			zap.Float64("received", received),
			zap.Float64("balance", balance),
			zap.Float64("running_total", s.history.Total()))

		s.baseline = balance
	case balance < s.baseline:
		// Outbound transfer or correction: move the baseline down so the
		// next net-positive delta is still detected, never record income.
		s.logger.Info("Balance decreased, baseline reset",
			zap.Float64("previous", s.baseline),
			zap.Float64("balance", balance))
		s.baseline = balance
	}

	stats := ComputeStats(s.history, now, s.start)
	s.printStatus(now, balance, stats)

	if err := s.cfg.Notifier.SendStats(ctx, balance, stats); err != nil {
		// Best effort: this cycle's statistics are lost, the loop goes on.
		s.logger.Warn("Statistics notification failed", zap.Error(err))
	}

	fmt.Println("Waiting for next check...")
	fmt.Println()
}

// readBalance queries the balance source with a bounded timeout. Any
// provider fault is reported as a zero balance so the loop never stalls or
// crashes on a flaky RPC.
func (s *Session) readBalance(ctx context.Context) float64 {
	qctx, cancel := context.WithTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	balance, err := s.cfg.Source.TokenBalance(qctx)
	if err != nil {
		s.logger.Warn("Balance query failed, treating balance as zero", zap.Error(err))
		return 0
	}
	return balance
}

func (s *Session) printBanner() {
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("%s transaction monitor started\n", s.cfg.TokenSymbol)
	fmt.Printf("Address: %s\n", s.cfg.Address)
	fmt.Printf("Check interval: %s\n", s.cfg.PollInterval)
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println()
}

func (s *Session) printStatus(now time.Time, balance float64, stats Stats) {
	sym := s.cfg.TokenSymbol

	fmt.Printf("[%s] Current balance: %s %s\n", now.Format(timeFormat), FormatAmount(balance), sym)
	fmt.Println(strings.Repeat("─", 60))
	fmt.Println("📊 STATISTICS BY PERIOD:")
	fmt.Printf("   Last 5 minutes:    %s %s\n", FormatAmount(stats.Last5Min), sym)
	if stats.Last15Min != nil {
		fmt.Printf("   Last 15 minutes:   %s %s\n", FormatAmount(*stats.Last15Min), sym)
	}
	if stats.LastHour != nil {
		fmt.Printf("   Last hour:         %s %s\n", FormatAmount(*stats.LastHour), sym)
	}
	if stats.Last24Hours != nil {
		fmt.Printf("   Last 24 hours:     %s %s\n", FormatAmount(*stats.Last24Hours), sym)
	}
	fmt.Printf("   Since start:       %s %s\n", FormatAmount(stats.Total), sym)
	fmt.Println(strings.Repeat("─", 60))
}
