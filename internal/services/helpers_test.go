package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dkalnina/garagelog/internal/logging"
	"github.com/dkalnina/garagelog/internal/models"
	"github.com/dkalnina/garagelog/internal/store"

	_ "modernc.org/sqlite"
)

// openEmbedded opens a store backed by a real SQLite file in a temp dir.
func openEmbedded(t *testing.T) *store.Store {
	t.Helper()
	s := store.New(filepath.Join(t.TempDir(), "test.db"), logging.NewNoopLogger())
	require.NoError(t, s.Open(context.Background()))
	require.Equal(t, store.ModeEmbedded, s.Mode())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// openFallback opens a store whose engine open fails, forcing fallback mode.
func openFallback(t *testing.T) *store.Store {
	t.Helper()
	s := store.New("/nonexistent-dir/su bdir/test.db", logging.NewNoopLogger())
	require.NoError(t, s.Open(context.Background()))
	require.Equal(t, store.ModeFallback, s.Mode())
	return s
}

// bothModes runs the test against the embedded and the fallback backend.
func bothModes(t *testing.T, fn func(t *testing.T, s *store.Store)) {
	t.Run("embedded", func(t *testing.T) { fn(t, openEmbedded(t)) })
	t.Run("fallback", func(t *testing.T) { fn(t, openFallback(t)) })
}

func mustVehicle(t *testing.T, s *store.Store, form models.VehicleForm) *models.Vehicle {
	t.Helper()
	v, err := NewVehicleService(s, logging.NewNoopLogger()).Create(context.Background(), form)
	require.NoError(t, err)
	return v
}

func gasForm(name string) models.VehicleForm {
	return models.VehicleForm{
		Name: name, Year: 2020, Make: "Toyota", Model: "Corolla",
		Type: models.VehicleTypeGas,
	}
}
