package registry

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Parkside-Labs/evalgate/internal/engine"
)

// fakeProcess records termination without touching the OS.
type fakeProcess struct {
	terminated atomic.Bool
}

func (p *fakeProcess) Terminate() error {
	p.terminated.Store(true)
	return nil
}

func (p *fakeProcess) Pid() int { return 12345 }

func register(t *testing.T, r *Registry, id string) *fakeProcess {
	t.Helper()
	proc := &fakeProcess{}
	require.NoError(t, r.Register(id, proc, "llm-evals smoke", time.Minute, nil))
	return proc
}

func TestRegistry_CapacityLimit(t *testing.T) {
	r := New(5)

	for i := 0; i < 5; i++ {
		assert.True(t, r.CanStartNew())
		register(t, r, fmt.Sprintf("run-%d", i))
	}

	assert.False(t, r.CanStartNew())
	assert.Equal(t, 5, r.Len())

	// A sixth register fails with a capacity error and leaves the set alone.
	err := r.Register("run-6", &fakeProcess{}, "llm-evals smoke", time.Minute, nil)
	require.ErrorIs(t, err, engine.ErrCapacity)
	assert.Equal(t, 5, r.Len())

	// Releasing any one slot re-opens admission.
	r.Unregister("run-2")
	assert.True(t, r.CanStartNew())
}

func TestRegistry_UnregisterIsIdempotent(t *testing.T) {
	r := New(2)
	register(t, r, "run-1")

	r.Unregister("run-1")
	assert.Equal(t, 0, r.Len())

	r.Unregister("run-1")
	r.Unregister("never-registered")
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_DuplicateIDRejected(t *testing.T) {
	r := New(3)
	register(t, r, "run-1")

	err := r.Register("run-1", &fakeProcess{}, "llm-evals full", time.Minute, nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, engine.ErrCapacity)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_TimeoutKillsAndReleases(t *testing.T) {
	r := New(1)
	proc := &fakeProcess{}

	timedOut := make(chan struct{})
	require.NoError(t, r.Register("run-1", proc, "llm-evals full", 10*time.Millisecond, func() {
		close(timedOut)
	}))

	select {
	case <-timedOut:
	case <-time.After(time.Second):
		t.Fatal("timeout callback never fired")
	}

	assert.True(t, proc.terminated.Load())
	assert.Equal(t, 0, r.Len())

	// The slot is free again under the same budget.
	register(t, r, "run-2")
}

// sequencedProcess records, at kill time, whether the timeout notification
// had already happened.
type sequencedProcess struct {
	notified       *atomic.Bool
	notifiedAtKill atomic.Bool
	killed         chan struct{}
}

func (p *sequencedProcess) Terminate() error {
	p.notifiedAtKill.Store(p.notified.Load())
	close(p.killed)
	return nil
}

func (p *sequencedProcess) Pid() int { return 12345 }

func TestRegistry_TimeoutNotifiesBeforeKill(t *testing.T) {
	r := New(1)

	var notified atomic.Bool
	proc := &sequencedProcess{notified: &notified, killed: make(chan struct{})}
	require.NoError(t, r.Register("run-1", proc, "llm-evals full", 5*time.Millisecond, func() {
		notified.Store(true)
	}))

	select {
	case <-proc.killed:
	case <-time.After(time.Second):
		t.Fatal("timed-out process never killed")
	}

	// A waiter unblocked by the kill must already be able to observe the
	// timeout, or it would misreport the failure as a process error.
	assert.True(t, proc.notifiedAtKill.Load(), "kill landed before the timeout notification")
}

func TestRegistry_TimerCancelledOnUnregister(t *testing.T) {
	r := New(1)
	proc := &fakeProcess{}

	fired := atomic.Bool{}
	require.NoError(t, r.Register("run-1", proc, "llm-evals smoke", 20*time.Millisecond, func() {
		fired.Store(true)
	}))
	r.Unregister("run-1")

	time.Sleep(60 * time.Millisecond)
	assert.False(t, fired.Load(), "timeout fired for an unregistered id")
	assert.False(t, proc.terminated.Load())
}

func TestRegistry_Cancel(t *testing.T) {
	r := New(2)
	proc := register(t, r, "run-1")

	assert.True(t, r.Cancel("run-1"))
	assert.True(t, proc.terminated.Load())
	assert.Equal(t, 0, r.Len())

	assert.False(t, r.Cancel("run-1"), "cancel of unknown id reports false")
}

func TestRegistry_Shutdown(t *testing.T) {
	r := New(3)
	procs := []*fakeProcess{
		register(t, r, "run-1"),
		register(t, r, "run-2"),
		register(t, r, "run-3"),
	}

	r.Shutdown()

	assert.Equal(t, 0, r.Len())
	for i, proc := range procs {
		assert.True(t, proc.terminated.Load(), "process %d not terminated", i)
	}
}

func TestRegistry_ActiveSnapshot(t *testing.T) {
	r := New(2)
	register(t, r, "run-1")

	active := r.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "run-1", active[0].ID)
	assert.Equal(t, "llm-evals smoke", active[0].CommandLine)
	assert.False(t, active[0].Started.IsZero())
}
