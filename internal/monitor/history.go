package monitor

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Record is a single detected inbound transfer.
type Record struct {
	Timestamp time.Time
	Amount    float64
}

// History is the append-only log of income detected during one monitoring
// session. Records are stored in insertion order, which is chronological
// order because the session appends with its own clock. The running total
// is updated at append time so it always equals the sum of all records.
type History struct {
	mu      sync.RWMutex
	records []Record
	total   float64
	logger  *zap.Logger
}

// NewHistory creates an empty history.
func NewHistory(logger *zap.Logger) *History {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &History{logger: logger}
}

// Append records an inbound amount. The caller only appends positive
// balance deltas; amounts are immutable once stored.
func (h *History) Append(amount float64, at time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.records = append(h.records, Record{Timestamp: at, Amount: amount})
	h.total += amount

	h.logger.Debug("Inbound transfer recorded",
		zap.Float64("amount", amount),
		zap.Time("at", at),
		zap.Float64("running_total", h.total))
}

// SumSince sums all records with timestamp >= cutoff. A record exactly at
// the cutoff is included.
func (h *History) SumSince(cutoff time.Time) float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var sum float64
	for _, r := range h.records {
		if !r.Timestamp.Before(cutoff) {
			sum += r.Amount
		}
	}
	return sum
}

// Total returns the running total received since the session started.
func (h *History) Total() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.total
}

// Len returns the number of recorded transfers.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.records)
}
