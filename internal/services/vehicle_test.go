package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkalnina/garagelog/internal/common"
	"github.com/dkalnina/garagelog/internal/logging"
	"github.com/dkalnina/garagelog/internal/models"
	"github.com/dkalnina/garagelog/internal/store"
)

func TestVehicleService_CreateAndGet(t *testing.T) {
	bothModes(t, func(t *testing.T, s *store.Store) {
		svc := NewVehicleService(s, logging.NewNoopLogger())
		ctx := context.Background()

		v, err := svc.Create(ctx, gasForm("Family car"))
		require.NoError(t, err)
		assert.NotEmpty(t, v.ID)
		assert.Equal(t, models.VehicleStatusActive, v.Status, "status defaults to active")
		assert.False(t, v.CreatedAt.IsZero())

		got, err := svc.GetByID(ctx, v.ID)
		require.NoError(t, err)
		assert.Equal(t, "Family car", got.Name)
		assert.Equal(t, models.VehicleTypeGas, got.Type)
	})
}

func TestVehicleService_GetAllSortedByName(t *testing.T) {
	bothModes(t, func(t *testing.T, s *store.Store) {
		svc := NewVehicleService(s, logging.NewNoopLogger())
		ctx := context.Background()

		mustVehicle(t, s, gasForm("Zulu"))
		mustVehicle(t, s, gasForm("Alpha"))

		all, err := svc.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "Alpha", all[0].Name)
		assert.Equal(t, "Zulu", all[1].Name)
	})
}

func TestVehicleService_CreateValidation(t *testing.T) {
	bothModes(t, func(t *testing.T, s *store.Store) {
		svc := NewVehicleService(s, logging.NewNoopLogger())
		ctx := context.Background()

		cases := map[string]models.VehicleForm{
			"missing name": {Year: 2020, Type: models.VehicleTypeGas},
			"year too old": {Name: "x", Year: 1899, Type: models.VehicleTypeGas},
			"year in future": {
				Name: "x", Year: time.Now().Year() + 2, Type: models.VehicleTypeGas,
			},
			"unknown type": {Name: "x", Year: 2020, Type: "steam"},
			"unknown status": {
				Name: "x", Year: 2020, Type: models.VehicleTypeGas, Status: "scrapped",
			},
		}
		for name, form := range cases {
			_, err := svc.Create(ctx, form)
			assert.ErrorIs(t, err, common.ErrValidation, name)
		}

		all, err := svc.GetAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all, "rejected forms must not persist")
	})
}

func TestVehicleService_UpdatePartial(t *testing.T) {
	bothModes(t, func(t *testing.T, s *store.Store) {
		svc := NewVehicleService(s, logging.NewNoopLogger())
		ctx := context.Background()

		v := mustVehicle(t, s, gasForm("Old name"))

		name := "New name"
		status := models.VehicleStatusInactive
		got, err := svc.Update(ctx, v.ID, models.VehicleUpdate{Name: &name, Status: &status})
		require.NoError(t, err)
		assert.Equal(t, "New name", got.Name)
		assert.Equal(t, models.VehicleStatusInactive, got.Status)
		assert.Equal(t, 2020, got.Year, "unset fields stay unchanged")
		assert.Equal(t, "Toyota", got.Make)

		reread, err := svc.GetByID(ctx, v.ID)
		require.NoError(t, err)
		assert.Equal(t, "New name", reread.Name)
		assert.Equal(t, models.VehicleStatusInactive, reread.Status)
	})
}

func TestVehicleService_UpdateRejectsInvalidMerge(t *testing.T) {
	bothModes(t, func(t *testing.T, s *store.Store) {
		svc := NewVehicleService(s, logging.NewNoopLogger())
		ctx := context.Background()

		v := mustVehicle(t, s, gasForm("Car"))

		bad := models.VehicleType("steam")
		_, err := svc.Update(ctx, v.ID, models.VehicleUpdate{Type: &bad})
		assert.ErrorIs(t, err, common.ErrValidation)

		reread, err := svc.GetByID(ctx, v.ID)
		require.NoError(t, err)
		assert.Equal(t, models.VehicleTypeGas, reread.Type)
	})
}

func TestVehicleService_NotFound(t *testing.T) {
	bothModes(t, func(t *testing.T, s *store.Store) {
		svc := NewVehicleService(s, logging.NewNoopLogger())
		ctx := context.Background()

		_, err := svc.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, common.ErrNotFound)

		name := "x"
		_, err = svc.Update(ctx, "missing", models.VehicleUpdate{Name: &name})
		assert.ErrorIs(t, err, common.ErrNotFound)

		assert.ErrorIs(t, svc.Delete(ctx, "missing"), common.ErrNotFound)
	})
}

func TestVehicleService_DeleteCascades(t *testing.T) {
	bothModes(t, func(t *testing.T, s *store.Store) {
		log := logging.NewNoopLogger()
		vehicles := NewVehicleService(s, log)
		fuel := NewFuelService(s, log)
		records := NewServiceRecordService(s, log)
		ctx := context.Background()

		v := mustVehicle(t, s, gasForm("Doomed"))
		keep := mustVehicle(t, s, gasForm("Keeper"))

		_, err := fuel.Create(ctx, models.FuelForm{
			VehicleID: v.ID, Date: "2024-01-10",
			Quantity: 10, PricePerUnit: 3.5, Mileage: 1000,
		})
		require.NoError(t, err)
		_, err = fuel.Create(ctx, models.FuelForm{
			VehicleID: keep.ID, Date: "2024-01-11",
			Quantity: 8, PricePerUnit: 3.5, Mileage: 5000,
		})
		require.NoError(t, err)
		_, err = records.Create(ctx, models.ServiceForm{
			VehicleID: v.ID, Date: "2024-01-15", Type: "oil_change", Description: "oil",
		})
		require.NoError(t, err)

		require.NoError(t, vehicles.Delete(ctx, v.ID))

		_, err = vehicles.GetByID(ctx, v.ID)
		assert.ErrorIs(t, err, common.ErrNotFound)

		orphaned, err := fuel.GetByVehicle(ctx, v.ID)
		require.NoError(t, err)
		assert.Empty(t, orphaned, "fuel entries must not survive their vehicle")

		recs, err := records.GetByVehicle(ctx, v.ID)
		require.NoError(t, err)
		assert.Empty(t, recs, "service records must not survive their vehicle")

		kept, err := fuel.GetByVehicle(ctx, keep.ID)
		require.NoError(t, err)
		assert.Len(t, kept, 1, "other vehicles are untouched")
	})
}
