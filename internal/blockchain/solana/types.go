package solana

import (
	"sync"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

const (
	defaultTimeout = 10 * time.Second
	maxRetries     = 3
	retryDelay     = 500 * time.Millisecond
)

// RPCClient wraps a single RPC endpoint with health state and metrics.
type RPCClient struct {
	Client  *rpc.Client
	URL     string
	active  bool
	mutex   sync.RWMutex
	metrics *RPCMetrics
}

// RPCMetrics tracks per-endpoint request outcomes.
type RPCMetrics struct {
	successCount uint64
	errorCount   uint64
	latency      time.Duration
	mutex        sync.RWMutex
}

// Client is a round-robin pool over the configured RPC endpoints.
type Client struct {
	rpcClients []*RPCClient
	currIndex  int
	mutex      sync.Mutex
	logger     *zap.Logger
}
