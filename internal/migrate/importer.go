package migrate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/dkalnina/garagelog/internal/common"
	"github.com/dkalnina/garagelog/internal/logging"
	"github.com/dkalnina/garagelog/internal/models"
	"github.com/dkalnina/garagelog/internal/services"
	"github.com/dkalnina/garagelog/internal/store"
)

// Version identifies this migration; the migration log is checked for a
// successful run of it before anything else happens, so reruns are no-ops.
const Version = "sqlite-v1"

// Importer moves the legacy key-value data into the record store through the
// entity services' create paths, inside one transaction.
type Importer struct {
	store      *store.Store
	legacy     LegacyStore
	backupPath string
	log        logging.Logger
}

func NewImporter(st *store.Store, legacy LegacyStore, backupPath string, log logging.Logger) *Importer {
	return &Importer{store: st, legacy: legacy, backupPath: backupPath, log: log}
}

// Run performs the migration. It is idempotent: a prior successful run of
// this Version short-circuits, and a failed run writes no success row, so a
// retry starts clean.
func (im *Importer) Run(ctx context.Context) error {
	applied, err := im.alreadyApplied(ctx)
	if err != nil {
		return fmt.Errorf("%w: checking migration log: %v", common.ErrMigration, err)
	}
	if applied {
		im.log.Info(ctx, "legacy migration already applied", "version", Version)
		return nil
	}

	snap, err := im.readLegacy(ctx)
	if err != nil {
		return fmt.Errorf("%w: reading legacy store: %v", common.ErrMigration, err)
	}

	if err := im.writeBackup(snap); err != nil {
		return fmt.Errorf("%w: writing backup: %v", common.ErrMigration, err)
	}

	if err := validateSnapshot(snap); err != nil {
		return err
	}

	// Fuel entries import oldest-first so each entry sees its true prior at
	// create time and efficiencies come out right.
	sort.SliceStable(snap.FuelEntries, func(i, j int) bool {
		return snap.FuelEntries[i].Date < snap.FuelEntries[j].Date
	})

	err = im.store.Transaction(ctx, func(ctx context.Context, c store.Conn) error {
		vehicleSvc := services.NewVehicleService(c, im.log)
		fuelSvc := services.NewFuelService(c, im.log)
		recordSvc := services.NewServiceRecordService(c, im.log)

		// Create paths assign fresh ids; the map carries old→new for the
		// foreign keys.
		idMap := make(map[string]string, len(snap.Vehicles))
		for _, lv := range snap.Vehicles {
			v, err := vehicleSvc.Create(ctx, models.VehicleForm{
				Name:   lv.Name,
				Year:   lv.Year,
				Make:   lv.Make,
				Model:  lv.Model,
				Type:   models.VehicleType(lv.Type),
				Status: models.VehicleStatus(lv.Status),
			})
			if err != nil {
				return fmt.Errorf("vehicle %s: %w", lv.ID, err)
			}
			idMap[lv.ID] = v.ID
		}

		for _, lf := range snap.FuelEntries {
			if _, err := fuelSvc.Create(ctx, models.FuelForm{
				VehicleID:    idMap[lf.VehicleID],
				Date:         lf.Date,
				Amount:       lf.Amount,
				Quantity:     lf.Quantity,
				PricePerUnit: lf.PricePerUnit,
				Mileage:      lf.Mileage,
				FuelStation:  lf.FuelStation,
				Notes:        lf.Notes,
			}); err != nil {
				return fmt.Errorf("fuel entry %s: %w", lf.ID, err)
			}
		}

		for _, lr := range snap.ServiceRecords {
			if _, err := recordSvc.Create(ctx, models.ServiceForm{
				VehicleID:   idMap[lr.VehicleID],
				Date:        lr.Date,
				Type:        lr.Type,
				Description: lr.Description,
				Cost:        lr.Cost,
				Mileage:     lr.Mileage,
				Notes:       lr.Notes,
				IsCompleted: lr.IsCompleted,
			}); err != nil {
				return fmt.Errorf("service record %s: %w", lr.ID, err)
			}
		}

		_, err := c.Exec(ctx, store.InsertCmd{Table: "migration_log", Values: store.Row{
			"version":    Version,
			"applied_at": time.Now().UTC().Format(time.RFC3339),
			"success":    int64(1),
		}})
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: import failed, nothing persisted: %v", common.ErrMigration, err)
	}

	im.log.Info(ctx, "legacy migration complete",
		"version", Version,
		"vehicles", len(snap.Vehicles),
		"fuel_entries", len(snap.FuelEntries),
		"service_records", len(snap.ServiceRecords))
	return nil
}

// RestoreFromBackup writes the backup snapshot back into the legacy store.
func (im *Importer) RestoreFromBackup(ctx context.Context) error {
	snap, err := im.readBackup()
	if err != nil {
		return err
	}

	items := map[string]any{
		keyVehicles:       snap.Vehicles,
		keyFuelEntries:    snap.FuelEntries,
		keyServiceRecords: snap.ServiceRecords,
	}
	for key, value := range items {
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("%w: encoding backup for %s: %v", common.ErrMigration, key, err)
		}
		if err := im.legacy.SetItem(ctx, key, string(raw)); err != nil {
			return fmt.Errorf("%w: restoring %s: %v", common.ErrMigration, key, err)
		}
	}

	im.log.Info(ctx, "legacy store restored from backup", "path", im.backupPath)
	return nil
}

// Rollback closes the record store and restores the legacy snapshot.
func (im *Importer) Rollback(ctx context.Context) error {
	if _, err := os.Stat(im.backupPath); os.IsNotExist(err) {
		return fmt.Errorf("%w: no backup available for rollback", common.ErrMigration)
	}
	if err := im.store.Close(); err != nil {
		return fmt.Errorf("%w: closing store: %v", common.ErrMigration, err)
	}
	return im.RestoreFromBackup(ctx)
}

func (im *Importer) alreadyApplied(ctx context.Context) (bool, error) {
	rows, err := im.store.Query(ctx, store.SelectCmd{
		Table: "migration_log",
		Where: &store.Eq{Column: "version", Value: Version},
	})
	if err != nil {
		return false, err
	}
	for _, r := range rows {
		if models.MigrationLogFromRow(r).Success {
			return true, nil
		}
	}
	return false, nil
}

func (im *Importer) readLegacy(ctx context.Context) (*snapshot, error) {
	snap := &snapshot{}
	if err := readLegacyList(ctx, im.legacy, keyVehicles, &snap.Vehicles); err != nil {
		return nil, err
	}
	if err := readLegacyList(ctx, im.legacy, keyFuelEntries, &snap.FuelEntries); err != nil {
		return nil, err
	}
	if err := readLegacyList(ctx, im.legacy, keyServiceRecords, &snap.ServiceRecords); err != nil {
		return nil, err
	}
	return snap, nil
}

func readLegacyList[T any](ctx context.Context, legacy LegacyStore, key string, dst *[]T) error {
	raw, ok, err := legacy.GetItem(ctx, key)
	if err != nil {
		return err
	}
	if !ok || raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("parsing %s: %w", key, err)
	}
	return nil
}

func (im *Importer) writeBackup(snap *snapshot) error {
	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(im.backupPath, raw, 0o600)
}

func (im *Importer) readBackup() (*snapshot, error) {
	raw, err := os.ReadFile(im.backupPath)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: no backup found", common.ErrMigration)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading backup: %v", common.ErrMigration, err)
	}
	snap := &snapshot{}
	if err := json.Unmarshal(raw, snap); err != nil {
		return nil, fmt.Errorf("%w: parsing backup: %v", common.ErrMigration, err)
	}
	return snap, nil
}

// validateSnapshot checks structural integrity before any write: required
// fields present, numerics in valid ranges, foreign keys resolvable.
func validateSnapshot(snap *snapshot) error {
	seen := make(map[string]bool, len(snap.Vehicles))
	maxYear := time.Now().Year() + 1
	for i, v := range snap.Vehicles {
		switch {
		case v.ID == "":
			return fmt.Errorf("%w: vehicle %d has no id", common.ErrMigration, i)
		case v.Name == "":
			return fmt.Errorf("%w: vehicle %s has no name", common.ErrMigration, v.ID)
		case v.Year < 1900 || v.Year > maxYear:
			return fmt.Errorf("%w: vehicle %s year %d out of range", common.ErrMigration, v.ID, v.Year)
		}
		seen[v.ID] = true
	}
	for _, f := range snap.FuelEntries {
		switch {
		case f.ID == "":
			return fmt.Errorf("%w: fuel entry without id", common.ErrMigration)
		case !seen[f.VehicleID]:
			return fmt.Errorf("%w: fuel entry %s references unknown vehicle %q", common.ErrMigration, f.ID, f.VehicleID)
		case f.Quantity <= 0 || f.PricePerUnit <= 0 || f.Mileage < 0:
			return fmt.Errorf("%w: fuel entry %s has out-of-range numbers", common.ErrMigration, f.ID)
		}
		if _, err := time.Parse(models.DateLayout, f.Date); err != nil {
			return fmt.Errorf("%w: fuel entry %s has invalid date %q", common.ErrMigration, f.ID, f.Date)
		}
	}
	for _, r := range snap.ServiceRecords {
		switch {
		case r.ID == "":
			return fmt.Errorf("%w: service record without id", common.ErrMigration)
		case !seen[r.VehicleID]:
			return fmt.Errorf("%w: service record %s references unknown vehicle %q", common.ErrMigration, r.ID, r.VehicleID)
		case r.Cost < 0 || r.Mileage < 0:
			return fmt.Errorf("%w: service record %s has out-of-range numbers", common.ErrMigration, r.ID)
		}
		if _, err := time.Parse(models.DateLayout, r.Date); err != nil {
			return fmt.Errorf("%w: service record %s has invalid date %q", common.ErrMigration, r.ID, r.Date)
		}
	}
	return nil
}
