package runlog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/edupath-ingest/internal/core"
)

var _ core.RunStore = (*Memory)(nil)
var _ core.RunStore = (*Postgres)(nil)

func TestMemory_Lifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	clock := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	run := &core.Run{FileName: "s.csv", FileType: "csv", EntityType: "User", Status: core.StatusPending}
	require.NoError(t, m.Create(ctx, run))
	assert.Equal(t, int64(1), run.ID)
	assert.Equal(t, clock, run.CreatedAt)

	clock = clock.Add(time.Minute)
	total, ok, failed := 3, 2, 1
	run.Status = core.StatusPartiallyCompleted
	run.TotalRecords, run.SuccessfulRecords, run.FailedRecords = &total, &ok, &failed
	run.RowErrors = []string{"record 2: boom"}
	require.NoError(t, m.Update(ctx, run))

	got, err := m.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusPartiallyCompleted, got.Status)
	assert.Equal(t, clock, got.UpdatedAt)
	assert.Equal(t, clock.Add(-time.Minute), got.CreatedAt)
	assert.Equal(t, []string{"record 2: boom"}, got.RowErrors)

	// Mutating the caller's run does not reach the store.
	*run.TotalRecords = 99
	run.RowErrors[0] = "changed"
	got, _ = m.Get(ctx, run.ID)
	assert.Equal(t, 3, *got.TotalRecords)
	assert.Equal(t, "record 2: boom", got.RowErrors[0])
}

func TestMemory_UnknownRun(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Get(ctx, 42)
	assert.ErrorIs(t, err, core.ErrRunNotFound)
	assert.ErrorIs(t, m.Update(ctx, &core.Run{ID: 42}), core.ErrRunNotFound)
}

func TestMemory_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	for i := 0; i < 5; i++ {
		require.NoError(t, m.Create(ctx, &core.Run{Status: core.StatusPending}))
	}

	runs, err := m.List(ctx, 3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, []int64{5, 4, 3}, []int64{runs[0].ID, runs[1].ID, runs[2].ID})

	runs, err = m.List(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, runs, 5)
}
