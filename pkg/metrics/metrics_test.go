package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestManagerCreation(t *testing.T) {
	m := NewManager(
		WithNamespace("test"),
		WithSubsystem("engine"),
		WithRegistry(prometheus.NewRegistry()),
	)
	if m == nil {
		t.Fatal("manager is nil")
	}
	if m.namespace != "test" {
		t.Errorf("namespace = %q, expected %q", m.namespace, "test")
	}
}

func TestOptionsIgnoreZeroValues(t *testing.T) {
	m := NewManager(
		WithNamespace(""),
		WithSubsystem(""),
		WithHistogramBuckets(nil),
		WithRegistry(prometheus.NewRegistry()),
	)
	if m.namespace != "challwatch" {
		t.Errorf("empty namespace should keep default, got %q", m.namespace)
	}
	if m.subsystem != "engine" {
		t.Errorf("empty subsystem should keep default, got %q", m.subsystem)
	}
	if len(m.histogramBuckets) == 0 {
		t.Error("nil buckets should keep defaults")
	}
}

func TestGlobalRecorders(t *testing.T) {
	// The global manager is initialized in init(); the helpers must not panic.
	RecordSyncCycle("challenges")
	RecordFetchError("users")
	RecordChallengeDiscovered()
	RecordSolveRecorded()
	RecordDuplicateSolve()
	UpdateQueueDepth(3)
	RecordEventEnqueued()
	RecordEventsDrained(3)
	RecordEventDispatched("new_solve")
	RecordDispatchFailure()
	RecordDispatchLatency(0.01)
	UpdateTrackedAuteurs(10)
	UpdateStoredChallenges(500)
	RecordBootstrapDuration(12.5)
	RecordBootstrapRun()

	if GetRegistry() == nil {
		t.Fatal("registry is nil")
	}
}
