package graph

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/edupath-ingest/internal/core/parser"
)

// TEST_DATABASE_URL points at a scratch database; the test is skipped
// without it.
func newTestPGStore(t *testing.T) *PGStore {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	s := NewPGStore(pool)
	require.NoError(t, s.EnsureSchema(ctx))
	return s
}

func TestPGStore_MergeAndLink(t *testing.T) {
	s := newTestPGStore(t)
	ctx := context.Background()
	e := NewEngine(s)

	sid := "S-" + uuid.NewString()
	mid := "M-" + uuid.NewString()

	_, err := e.UpsertStudent(ctx, parser.Record{"student_id": sid, "email": "a@x.io"})
	require.NoError(t, err)
	st, err := e.UpsertStudent(ctx, parser.Record{"student_id": sid, "username": "ada"})
	require.NoError(t, err)
	assert.Equal(t, "a@x.io", st.Email)
	assert.Equal(t, "ada", st.Username)

	m, err := e.UpsertModule(ctx, parser.Record{"module_id": mid, "credits": "5"})
	require.NoError(t, err)
	assert.Equal(t, 5, m.Credits)

	rec := parser.Record{"activity_id": "A-" + uuid.NewString()}
	_, err = e.CreateActivity(ctx, rec, st, m)
	require.NoError(t, err)
	_, err = e.CreateActivity(ctx, rec, st, m)
	require.NoError(t, err)
}

func TestPGStore_LinkMissingNode(t *testing.T) {
	s := newTestPGStore(t)

	err := s.Link(context.Background(),
		Ref{Label: LabelStudent, Key: "missing-" + uuid.NewString()},
		RelEnrolledIn,
		Ref{Label: LabelModule, Key: "missing-" + uuid.NewString()})
	assert.ErrorIs(t, err, ErrNodeNotFound)
}
