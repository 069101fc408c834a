package report

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.db")
	store, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

func sampleRun() *Run {
	run := NewRun("semigroup", "unit.yaml")
	run.Bindings = []Binding{
		{Key: "com.ext.Semigroup<std.Int>", Site: "com.ext.combine", Line: 41, Candidate: "com.ext.IntSemigroup", Tree: "singleton com.ext.IntSemigroup\n"},
		{Key: "com.ext.Semigroup<std.String>", Site: "com.ext.combine", Line: 50, Error: "no candidate found for parameter `semigroup: Semigroup<String>`"},
	}
	run.Diagnostics = []Diagnostic{
		{Code: "R001", File: "unit.yaml", Line: 50, Column: 5, Message: "no candidate"},
	}
	return run
}

func TestNewRun(t *testing.T) {
	a := NewRun("u", "f")
	b := NewRun("u", "f")
	assert.NotEqual(t, a.ID, b.ID)
	assert.Len(t, a.ID, 36)
	assert.WithinDuration(t, time.Now(), a.StartedAt, time.Minute)
}

func TestSaveAndQuery(t *testing.T) {
	ctx := context.Background()
	store, _ := openStore(t)

	run := sampleRun()
	require.NoError(t, store.Save(ctx, run))

	runs, err := store.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.Equal(t, "semigroup", runs[0].Unit)
	assert.Equal(t, 1, runs[0].Resolved)
	assert.Equal(t, 1, runs[0].Failed)
	assert.Equal(t, 1, runs[0].Diagnostics)
	assert.True(t, run.StartedAt.Equal(runs[0].StartedAt))

	bindings, err := store.Bindings(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.Bindings, bindings)
	assert.True(t, bindings[0].Resolved())
	assert.False(t, bindings[1].Resolved())

	diags, err := store.Diagnostics(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.Diagnostics, diags)
}

func TestSaveDuplicateRunRollsBack(t *testing.T) {
	ctx := context.Background()
	store, _ := openStore(t)

	run := sampleRun()
	require.NoError(t, store.Save(ctx, run))

	dup := sampleRun()
	dup.ID = run.ID
	dup.Bindings = append(dup.Bindings, Binding{Key: "extra"})
	assert.Error(t, store.Save(ctx, dup))

	bindings, err := store.Bindings(ctx, run.ID)
	require.NoError(t, err)
	assert.Len(t, bindings, 2)
}

func TestReopenKeepsRuns(t *testing.T) {
	ctx := context.Background()
	store, path := openStore(t)
	require.NoError(t, store.Save(ctx, sampleRun()))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	require.NoError(t, reopened.Save(ctx, sampleRun()))
	runs, err := reopened.Runs(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}
