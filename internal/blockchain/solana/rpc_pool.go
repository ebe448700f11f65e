package solana

import (
	"time"

	"go.uber.org/zap"
)

func (c *RPCClient) setActive(state bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.active = state
}

func (c *RPCClient) isActive() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.active
}

func (c *RPCClient) updateMetrics(success bool, latency time.Duration) {
	c.metrics.mutex.Lock()
	defer c.metrics.mutex.Unlock()

	if success {
		c.metrics.successCount++
	} else {
		c.metrics.errorCount++
	}

	c.metrics.latency = (c.metrics.latency + latency) / 2 // moving average
}

func (c *RPCClient) getMetrics() (uint64, uint64, time.Duration) {
	c.metrics.mutex.RLock()
	defer c.metrics.mutex.RUnlock()
	return c.metrics.successCount, c.metrics.errorCount, c.metrics.latency
}

// logPoolHealth reports per-endpoint metrics. Called after startup
// validation and whenever the pool recovers endpoints.
func (c *Client) logPoolHealth() {
	for _, client := range c.rpcClients {
		success, failure, latency := client.getMetrics()
		c.logger.Debug("RPC endpoint health",
			zap.String("url", client.URL),
			zap.Bool("active", client.isActive()),
			zap.Uint64("success", success),
			zap.Uint64("failure", failure),
			zap.Duration("avg_latency", latency))
	}
}
