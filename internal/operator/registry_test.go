// ABOUTME: Tests for the operator registry.
// ABOUTME: Validates secret-gated registration, idempotency, snapshots, and concurrency safety.

package operator

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Register_WrongSecret(t *testing.T) {
	reg := NewRegistry("team-secret", nil)

	err := reg.Register(42, "wrong")
	require.ErrorIs(t, err, ErrWrongSecret)

	assert.False(t, reg.IsOperator(42))
	assert.Equal(t, 0, reg.Len())
}

func TestRegistry_Register_CorrectSecret(t *testing.T) {
	reg := NewRegistry("team-secret", nil)

	require.NoError(t, reg.Register(42, "team-secret"))
	assert.True(t, reg.IsOperator(42))
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_Register_CaseSensitive(t *testing.T) {
	reg := NewRegistry("team-secret", nil)

	// Secret comparison is exact, no normalization
	require.ErrorIs(t, reg.Register(42, "Team-Secret"), ErrWrongSecret)
	require.ErrorIs(t, reg.Register(42, " team-secret"), ErrWrongSecret)
	assert.False(t, reg.IsOperator(42))
}

func TestRegistry_Register_Idempotent(t *testing.T) {
	reg := NewRegistry("team-secret", nil)

	require.NoError(t, reg.Register(42, "team-secret"))
	require.NoError(t, reg.Register(42, "team-secret"))

	assert.True(t, reg.IsOperator(42))
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_IsOperator_Unknown(t *testing.T) {
	reg := NewRegistry("team-secret", nil)

	assert.False(t, reg.IsOperator(999))
}

func TestRegistry_Snapshot(t *testing.T) {
	reg := NewRegistry("team-secret", nil)

	require.NoError(t, reg.Register(1, "team-secret"))
	require.NoError(t, reg.Register(2, "team-secret"))
	require.NoError(t, reg.Register(3, "team-secret"))

	snap := reg.Snapshot()
	assert.Len(t, snap, 3)
	assert.ElementsMatch(t, []int64{1, 2, 3}, snap)

	// Later registrations do not mutate an already-taken snapshot
	require.NoError(t, reg.Register(4, "team-secret"))
	assert.Len(t, snap, 3)
}

func TestRegistry_Snapshot_Empty(t *testing.T) {
	reg := NewRegistry("team-secret", nil)

	assert.Empty(t, reg.Snapshot())
}

func TestRegistry_Concurrent(t *testing.T) {
	reg := NewRegistry("team-secret", nil)

	const numGoroutines = 100

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func(id int64) {
			defer wg.Done()
			_ = reg.Register(id, "team-secret")
			reg.IsOperator(id)
			reg.Snapshot()
		}(int64(i % 10))
	}

	wg.Wait()

	// 100 registrations over 10 distinct ids
	assert.Equal(t, 10, reg.Len())
}
