package results

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/longthangvu/cutqc-mlft/internal/database"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := database.New(database.Config{
		Path: "file:" + t.Name() + "?mode=memory&cache=shared",
		Name: "results-test",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewRepository(db.Conn())
	require.NoError(t, repo.InitSchema())
	return repo
}

func TestSaveAndGetRecord(t *testing.T) {
	repo := newTestRepository(t)

	rec := &Record{
		CircuitLabel:      "clustered_ghz_4",
		NumQubits:         4,
		NumFragments:      2,
		Repetitions:       0,
		FullFidelity:      1.0,
		DirectFidelity:    0.999,
		LikelyFidelity:    0.9995,
		CuttingSeconds:    0.001,
		TomographySeconds: 0.42,
		BuildSeconds:      0.1,
		CorrectionSeconds: 0.05,
		RecombineSeconds:  0.2,
		Distribution:      map[string]float64{"0000": 0.5, "1111": 0.5},
	}
	require.NoError(t, repo.Save(rec))
	assert.NotEmpty(t, rec.ID, "save assigns an ID")
	assert.False(t, rec.CreatedAt.IsZero(), "save assigns a timestamp")

	loaded, err := repo.Get(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.CircuitLabel, loaded.CircuitLabel)
	assert.Equal(t, rec.NumQubits, loaded.NumQubits)
	assert.Equal(t, rec.NumFragments, loaded.NumFragments)
	assert.InDelta(t, rec.LikelyFidelity, loaded.LikelyFidelity, 1e-12)
	assert.InDelta(t, 0.5, loaded.Distribution["0000"], 1e-12)
	assert.InDelta(t, 0.5, loaded.Distribution["1111"], 1e-12)
}

func TestSaveReplacesExistingRecord(t *testing.T) {
	repo := newTestRepository(t)

	rec := &Record{ID: "fixed-id", CircuitLabel: "bell", NumQubits: 2}
	require.NoError(t, repo.Save(rec))

	rec.DirectFidelity = 0.5
	require.NoError(t, repo.Save(rec))

	loaded, err := repo.Get("fixed-id")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, loaded.DirectFidelity, 1e-12)
}

func TestGetMissingRecord(t *testing.T) {
	repo := newTestRepository(t)
	_, err := repo.Get("no-such-run")
	assert.Error(t, err)
}

func TestListReturnsNewestFirst(t *testing.T) {
	repo := newTestRepository(t)

	older := &Record{CircuitLabel: "bell", NumQubits: 2, CreatedAt: time.Now().UTC().Add(-time.Hour)}
	newer := &Record{CircuitLabel: "ghz", NumQubits: 4, CreatedAt: time.Now().UTC()}
	require.NoError(t, repo.Save(older))
	require.NoError(t, repo.Save(newer))

	records, err := repo.List(10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "ghz", records[0].CircuitLabel)
	assert.Equal(t, "bell", records[1].CircuitLabel)

	limited, err := repo.List(1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "ghz", limited[0].CircuitLabel)
}
