package metrics

import (
	"sync"
	"time"
)

type providerStats struct {
	calls           int
	errors          int
	rateLimitHits   int
	lastRetryAfter  time.Duration
	lastCallLatency time.Duration
}

type cacheStats struct {
	hits   int
	misses int
}

// Recorder captures in-memory metrics about upstream calls, sync cycles and
// cache lookups, and forwards them to OpenTelemetry when configured.
type Recorder struct {
	mu     sync.Mutex
	stats  map[string]*providerStats
	syncs  map[string]*SyncSnapshot
	caches map[string]*cacheStats
	otel   *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		stats:  make(map[string]*providerStats),
		syncs:  make(map[string]*SyncSnapshot),
		caches: make(map[string]*cacheStats),
		otel:   otel,
	}
}

// RecordProviderAttempt increments counters for a provider call and stores the last observed latency.
func (r *Recorder) RecordProviderAttempt(provider string, duration time.Duration, err error) {
	if r == nil {
		return
	}

	stats := r.ensureStats(provider)
	stats.calls++
	stats.lastCallLatency = duration
	if err != nil {
		stats.errors++
	}
	if r.otel != nil {
		r.otel.recordProviderAttempt(provider, duration, err)
	}
}

// RecordRateLimit tracks that a provider response hit a rate limit and stores the last Retry-After.
func (r *Recorder) RecordRateLimit(provider string, retryAfter time.Duration) {
	if r == nil {
		return
	}

	stats := r.ensureStats(provider)
	stats.rateLimitHits++
	if retryAfter > 0 {
		stats.lastRetryAfter = retryAfter
	}
	if r.otel != nil {
		r.otel.recordRateLimit(provider, retryAfter)
	}
}

// ProviderCalls returns the total attempts recorded for a provider.
func (r *Recorder) ProviderCalls(provider string) int {
	return r.Snapshot(provider).Calls
}

// ProviderErrors returns the total failed attempts recorded for a provider.
func (r *Recorder) ProviderErrors(provider string) int {
	return r.Snapshot(provider).Errors
}

// RateLimitHits returns the number of rate limit events seen for a provider.
func (r *Recorder) RateLimitHits(provider string) int {
	return r.Snapshot(provider).RateLimitHits
}

// LastRetryAfter returns the most recent Retry-After recorded for a provider.
func (r *Recorder) LastRetryAfter(provider string) time.Duration {
	return r.Snapshot(provider).LastRetryAfter
}

// LastCallLatency returns the last recorded latency for a provider call.
func (r *Recorder) LastCallLatency(provider string) time.Duration {
	return r.Snapshot(provider).LastCallLatency
}

// Snapshot returns a copy of the current stats for the provider.
type Snapshot struct {
	Calls           int
	Errors          int
	RateLimitHits   int
	LastRetryAfter  time.Duration
	LastCallLatency time.Duration
}

func (r *Recorder) Snapshot(provider string) Snapshot {
	if r == nil {
		return Snapshot{}
	}
	stats := r.snapshot(provider)
	return Snapshot{
		Calls:           stats.calls,
		Errors:          stats.errors,
		RateLimitHits:   stats.rateLimitHits,
		LastRetryAfter:  stats.lastRetryAfter,
		LastCallLatency: stats.lastCallLatency,
	}
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}

// SyncSnapshot summarizes the cycles recorded for one sync task.
type SyncSnapshot struct {
	Cycles       int
	Errors       int
	LastDuration time.Duration
}

// RecordSyncCycle tracks one run of a sync task and whether it failed.
func (r *Recorder) RecordSyncCycle(task string, duration time.Duration, err error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	snap, ok := r.syncs[task]
	if !ok {
		snap = &SyncSnapshot{}
		r.syncs[task] = snap
	}
	snap.Cycles++
	snap.LastDuration = duration
	if err != nil {
		snap.Errors++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordSyncCycle(task, duration, err)
	}
}

// SyncStats returns a copy of the counters for a sync task.
func (r *Recorder) SyncStats(task string) SyncSnapshot {
	if r == nil {
		return SyncSnapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if snap, ok := r.syncs[task]; ok {
		return *snap
	}
	return SyncSnapshot{}
}

// RecordCacheLookup tracks a hit or miss for a cache tier and category.
func (r *Recorder) RecordCacheLookup(tier, category string, hit bool) {
	if r == nil {
		return
	}
	key := tier + "/" + category
	r.mu.Lock()
	stats, ok := r.caches[key]
	if !ok {
		stats = &cacheStats{}
		r.caches[key] = stats
	}
	if hit {
		stats.hits++
	} else {
		stats.misses++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordCacheLookup(tier, category, hit)
	}
}

// CacheHits returns hits and misses recorded for a tier and category.
func (r *Recorder) CacheHits(tier, category string) (hits, misses int) {
	if r == nil {
		return 0, 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if stats, ok := r.caches[tier+"/"+category]; ok {
		return stats.hits, stats.misses
	}
	return 0, 0
}

func (r *Recorder) ensureStats(provider string) *providerStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.stats[provider]
	if !ok {
		stats = &providerStats{}
		r.stats[provider] = stats
	}
	return stats
}

func (r *Recorder) snapshot(provider string) providerStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	if stats, ok := r.stats[provider]; ok && stats != nil {
		return *stats
	}
	return providerStats{}
}
