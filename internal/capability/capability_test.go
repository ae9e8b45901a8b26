package capability

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackerLifecycle(t *testing.T) {
	tracker := NewTracker("classifier:openai")

	assert.Equal(t, StateInitializing, tracker.State())
	assert.Equal(t, "classifier:openai", tracker.Name())

	tracker.MarkReady()
	assert.Equal(t, StateReady, tracker.State())
	assert.Empty(t, tracker.Detail())
}

func TestTrackerFailureRecordsDetail(t *testing.T) {
	tracker := NewTracker("classifier:onnx")
	tracker.MarkFailed(errors.New("model file missing"))

	assert.Equal(t, StateFailed, tracker.State())
	assert.Equal(t, "model file missing", tracker.Detail())
}

func TestRegistryReadyRequiresAllTrackers(t *testing.T) {
	registry := NewRegistry()
	a := NewTracker("a")
	b := NewTracker("b")
	registry.Register(a)
	registry.Register(b)

	assert.False(t, registry.Ready())

	a.MarkReady()
	assert.False(t, registry.Ready())

	b.MarkReady()
	assert.True(t, registry.Ready())
}

func TestRegistrySnapshot(t *testing.T) {
	registry := NewRegistry()
	ready := NewTracker("ready-cap")
	ready.MarkReady()
	failed := NewTracker("failed-cap")
	failed.MarkFailed(errors.New("boom"))
	registry.Register(ready)
	registry.Register(failed)
	registry.Register(NewTracker("warming-cap"))

	snap := registry.Snapshot()
	assert.Equal(t, "ready", snap["ready-cap"])
	assert.Equal(t, "failed: boom", snap["failed-cap"])
	assert.Equal(t, "initializing", snap["warming-cap"])
}

func TestEmptyRegistryIsReady(t *testing.T) {
	assert.True(t, NewRegistry().Ready())
}
