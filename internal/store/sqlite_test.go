package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masonvector/masonvector/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "corpus", "claimants.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_InsertAndLoad(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	records := []model.Claimant{
		{ID: "fixed", Name: "John Smith", DOB: "1980-01-01", State: "QLD", Amount: 12.5,
			References: []string{"R1"}, Extra: map[string]string{"source": "csv"}},
		{Name: "Jane Doe", Email: "jane@example.com", ClaimID: "C-2", ExternalID: "L-2"},
	}

	inserted, err := s.Insert(ctx, records)
	require.NoError(t, err)
	require.Len(t, inserted, 2)
	assert.Equal(t, "fixed", inserted[0].ID)
	assert.NotEmpty(t, inserted[1].ID)
	assert.Empty(t, records[1].ID, "input must not be mutated")

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, inserted, loaded)
}

func TestStore_LoadEmpty(t *testing.T) {
	s := openTestStore(t)

	loaded, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, loaded)
	assert.Empty(t, loaded)
}

func TestStore_InsertNothing(t *testing.T) {
	s := openTestStore(t)

	inserted, err := s.Insert(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, inserted)
}

func TestStore_DuplicateIDRollsBack(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.Insert(ctx, []model.Claimant{{ID: "a", Name: "A"}})
	require.NoError(t, err)

	_, err = s.Insert(ctx, []model.Claimant{{ID: "b", Name: "B"}, {ID: "a", Name: "A again"}})
	require.Error(t, err)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "failed batch must not be partially written")
}

func TestStore_Memory(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, ":memory:", nil)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	_, err = s.Insert(ctx, []model.Claimant{{Name: "A"}})
	require.NoError(t, err)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, ":memory:", s.Path())
}
