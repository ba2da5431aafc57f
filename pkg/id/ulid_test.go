package id_test

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/designcise/hawkbit/pkg/id"
)

func TestNewULID(t *testing.T) {
	t.Parallel()

	t.Run("format", func(t *testing.T) {
		t.Parallel()

		v := id.NewULID()
		require.Len(t, v, 26)
		require.True(t, id.Valid(v))
	})

	t.Run("monotonic", func(t *testing.T) {
		t.Parallel()

		ids := make([]string, 1000)
		for i := range ids {
			ids[i] = id.NewULID()
		}
		require.True(t, sort.StringsAreSorted(ids))

		seen := make(map[string]struct{}, len(ids))
		for _, v := range ids {
			seen[v] = struct{}{}
		}
		require.Len(t, seen, len(ids))
	})
}

func TestTime(t *testing.T) {
	t.Parallel()

	before := time.Now().Add(-time.Millisecond)
	ts, err := id.Time(id.NewULID())
	require.NoError(t, err)
	require.WithinRange(t, ts, before, time.Now().Add(time.Millisecond))

	_, err = id.Time("not-a-ulid")
	require.Error(t, err)
	require.False(t, id.Valid("not-a-ulid"))
}

func BenchmarkNewULID(b *testing.B) {
	for b.Loop() {
		_ = id.NewULID()
	}
}
