package service

import (
	"sync/atomic"
	"time"
)

// Metrics tracks record-store and cache call metrics
type Metrics struct {
	remoteCalls    int64
	remoteErrors   int64
	remoteLatency  int64 // Total latency in nanoseconds
	cacheHits      int64
	cacheMisses    int64
	outboxEnqueued int64
	outboxDrained  int64
}

var globalMetrics = &Metrics{}

// GetMetrics returns the current metrics snapshot
func GetMetrics() Metrics {
	return Metrics{
		remoteCalls:    atomic.LoadInt64(&globalMetrics.remoteCalls),
		remoteErrors:   atomic.LoadInt64(&globalMetrics.remoteErrors),
		remoteLatency:  atomic.LoadInt64(&globalMetrics.remoteLatency),
		cacheHits:      atomic.LoadInt64(&globalMetrics.cacheHits),
		cacheMisses:    atomic.LoadInt64(&globalMetrics.cacheMisses),
		outboxEnqueued: atomic.LoadInt64(&globalMetrics.outboxEnqueued),
		outboxDrained:  atomic.LoadInt64(&globalMetrics.outboxDrained),
	}
}

// ResetMetrics resets all metrics (useful for testing)
func ResetMetrics() {
	atomic.StoreInt64(&globalMetrics.remoteCalls, 0)
	atomic.StoreInt64(&globalMetrics.remoteErrors, 0)
	atomic.StoreInt64(&globalMetrics.remoteLatency, 0)
	atomic.StoreInt64(&globalMetrics.cacheHits, 0)
	atomic.StoreInt64(&globalMetrics.cacheMisses, 0)
	atomic.StoreInt64(&globalMetrics.outboxEnqueued, 0)
	atomic.StoreInt64(&globalMetrics.outboxDrained, 0)
}

// recordRemoteCall records a remote record-store call
func recordRemoteCall(duration time.Duration, err error) {
	atomic.AddInt64(&globalMetrics.remoteCalls, 1)
	atomic.AddInt64(&globalMetrics.remoteLatency, duration.Nanoseconds())
	if err != nil {
		atomic.AddInt64(&globalMetrics.remoteErrors, 1)
	}
}

func recordCacheHit() {
	atomic.AddInt64(&globalMetrics.cacheHits, 1)
}

func recordCacheMiss() {
	atomic.AddInt64(&globalMetrics.cacheMisses, 1)
}

func recordOutboxEnqueued() {
	atomic.AddInt64(&globalMetrics.outboxEnqueued, 1)
}

func recordOutboxDrained() {
	atomic.AddInt64(&globalMetrics.outboxDrained, 1)
}

// CacheHits returns the cache hit count from a snapshot
func (m Metrics) CacheHits() int64 { return m.cacheHits }

// CacheMisses returns the cache miss count from a snapshot
func (m Metrics) CacheMisses() int64 { return m.cacheMisses }

// RemoteErrorRate returns the error rate as a percentage
func (m Metrics) RemoteErrorRate() float64 {
	if m.remoteCalls == 0 {
		return 0
	}
	return float64(m.remoteErrors) / float64(m.remoteCalls) * 100
}

// AverageRemoteLatency returns the average latency in milliseconds
func (m Metrics) AverageRemoteLatency() float64 {
	if m.remoteCalls == 0 {
		return 0
	}
	avgNs := float64(m.remoteLatency) / float64(m.remoteCalls)
	return avgNs / 1e6 // Convert nanoseconds to milliseconds
}
