package fpgate

import (
	"sync"
	"testing"
)

func TestMetricsDisabledNoIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	m.Inc(MetricIssueSuccess)

	if got := m.Value(MetricIssueSuccess); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestMetricsEnabledIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(MetricIssueSuccess)
	m.Inc(MetricIssueSuccess)
	m.Inc(MetricIssueSuccess)

	if got := m.Value(MetricIssueSuccess); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
}

func TestMetricsConcurrentIncrementSafe(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const goroutines = 32
	const perG = 4000

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perG; j++ {
				m.Inc(MetricValidateSuccess)
			}
		}()
	}
	wg.Wait()

	want := uint64(goroutines * perG)
	if got := m.Value(MetricValidateSuccess); got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}
}

func TestMetricsSnapshotCoversAllCounters(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(MetricRateLimitHit)

	snap := m.Snapshot()
	if len(snap.Counters) != int(metricIDCount) {
		t.Fatalf("snapshot has %d counters, want %d", len(snap.Counters), metricIDCount)
	}
	if snap.Counters[MetricRateLimitHit] != 1 {
		t.Fatalf("rate-limit counter = %d", snap.Counters[MetricRateLimitHit])
	}
}

func TestEngineMetricsPerRejectionExactlyOnce(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.MaxRequests = 1
	engine, now := newTestEngine(t, cfg)

	mustIssue(t, engine, cleanRequest("fp-1", now))
	mustReject(t, engine, cleanRequest("fp-1", now), ReasonRateLimitExceeded)

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricIssueSuccess] != 1 {
		t.Fatalf("issue-success = %d", snap.Counters[MetricIssueSuccess])
	}
	if snap.Counters[MetricRateLimitHit] != 1 {
		t.Fatalf("rate-limit = %d", snap.Counters[MetricRateLimitHit])
	}
	// No other rejection counter may have moved.
	for _, id := range []MetricID{
		MetricLockoutHit, MetricBotDetected, MetricReplayDetected,
		MetricAttestationNotFound, MetricConsistencyRejected,
		MetricSuspiciousNewFingerprint, MetricTimestampRejected,
		MetricVerificationError, MetricValidateFailure,
	} {
		if snap.Counters[id] != 0 {
			t.Fatalf("counter %d = %d, want 0", id, snap.Counters[id])
		}
	}
}
