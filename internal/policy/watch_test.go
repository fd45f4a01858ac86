package policy

import (
	"context"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redactable/redactable/internal/metrics"
)

const watchedV1 = "name: watched\nrules:\n  - id: e\n    field: email\n    action: redact\n"
const watchedV2 = "name: watched\nrules:\n  - id: e\n    field: email\n    action: mask\n"

func TestWatcher_ReloadKeepsPreviousOnError(t *testing.T) {
	path := writePolicy(t, "watched.yaml", watchedV1)
	reg := prometheus.NewRegistry()
	col := metrics.NewCollector(reg)

	w, err := NewWatcher(path, WithWatchMetrics(col))
	require.NoError(t, err)
	assert.Equal(t, ActionRedact, w.Current().Rules[0].Action)

	require.NoError(t, os.WriteFile(path, []byte("rules:\n  - field: email\n    action: shred\n"), 0o600))
	assert.ErrorIs(t, w.Reload(), ErrUnknownAction)
	assert.Equal(t, ActionRedact, w.Current().Rules[0].Action)

	require.NoError(t, os.WriteFile(path, []byte(watchedV2), 0o600))
	require.NoError(t, w.Reload())
	assert.Equal(t, ActionMask, w.Current().Rules[0].Action)

	n, err := testutil.GatherAndCount(reg, "redactable_policy_reloads_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "one failed and one successful series")
}

func TestWatcher_InitialLoadMustSucceed(t *testing.T) {
	_, err := NewWatcher(writePolicy(t, "broken.yaml", "version: 0\n"))
	assert.ErrorIs(t, err, ErrInvalidPolicy)
}

func TestWatcher_Run(t *testing.T) {
	path := writePolicy(t, "watched.yaml", watchedV1)
	var changes atomic.Int32
	w, err := NewWatcher(path, WithDebounce(10*time.Millisecond), OnChange(func(*Policy) { changes.Add(1) }))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Keep rewriting until the watcher has picked up the change; the
	// directory watch may not be registered when the first write lands.
	assert.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte(watchedV2), 0o600)
		return w.Current().Rules[0].Action == ActionMask
	}, 5*time.Second, 50*time.Millisecond)
	assert.GreaterOrEqual(t, changes.Load(), int32(1))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}
