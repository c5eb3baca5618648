// Package services implements the entity services: validated CRUD over the
// record store for vehicles, fuel entries, service records and settings.
// All validation happens before the first store call, so a validation error
// never leaves a partial write behind.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dkalnina/garagelog/internal/common"
	"github.com/dkalnina/garagelog/internal/logging"
	"github.com/dkalnina/garagelog/internal/models"
	"github.com/dkalnina/garagelog/internal/store"
)

// minVehicleYear is the oldest plausible model year.
const minVehicleYear = 1900

type VehicleService interface {
	GetAll(ctx context.Context) ([]models.Vehicle, error)
	GetByID(ctx context.Context, id string) (*models.Vehicle, error)
	Create(ctx context.Context, form models.VehicleForm) (*models.Vehicle, error)
	Update(ctx context.Context, id string, upd models.VehicleUpdate) (*models.Vehicle, error)
	Delete(ctx context.Context, id string) error
}

type vehicleService struct {
	db  store.Conn
	log logging.Logger
}

func NewVehicleService(db store.Conn, log logging.Logger) VehicleService {
	return &vehicleService{db: db, log: log}
}

func (s *vehicleService) GetAll(ctx context.Context) ([]models.Vehicle, error) {
	rows, err := s.db.Query(ctx, store.SelectCmd{Table: "vehicles", OrderBy: "name"})
	if err != nil {
		return nil, fmt.Errorf("listing vehicles: %w", err)
	}
	out := make([]models.Vehicle, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.VehicleFromRow(r))
	}
	return out, nil
}

func (s *vehicleService) GetByID(ctx context.Context, id string) (*models.Vehicle, error) {
	return getVehicle(ctx, s.db, id)
}

func getVehicle(ctx context.Context, c store.Conn, id string) (*models.Vehicle, error) {
	rows, err := c.Query(ctx, store.SelectCmd{
		Table: "vehicles",
		Where: &store.Eq{Column: "id", Value: id},
	})
	if err != nil {
		return nil, fmt.Errorf("fetching vehicle %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("vehicle %s: %w", id, common.ErrNotFound)
	}
	v := models.VehicleFromRow(rows[0])
	return &v, nil
}

func (s *vehicleService) Create(ctx context.Context, form models.VehicleForm) (*models.Vehicle, error) {
	if form.Status == "" {
		form.Status = models.VehicleStatusActive
	}
	if err := validateVehicleForm(form); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	v := models.Vehicle{
		ID:        uuid.NewString(),
		Name:      form.Name,
		Year:      form.Year,
		Make:      form.Make,
		Model:     form.Model,
		Type:      form.Type,
		Status:    form.Status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.db.Exec(ctx, store.InsertCmd{Table: "vehicles", Values: v.Row()}); err != nil {
		return nil, fmt.Errorf("creating vehicle: %w", err)
	}
	return &v, nil
}

// Update merges only the provided fields into the existing vehicle.
func (s *vehicleService) Update(ctx context.Context, id string, upd models.VehicleUpdate) (*models.Vehicle, error) {
	v, err := getVehicle(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		v.Name = *upd.Name
	}
	if upd.Year != nil {
		v.Year = *upd.Year
	}
	if upd.Make != nil {
		v.Make = *upd.Make
	}
	if upd.Model != nil {
		v.Model = *upd.Model
	}
	if upd.Type != nil {
		v.Type = *upd.Type
	}
	if upd.Status != nil {
		v.Status = *upd.Status
	}

	if err := validateVehicleForm(models.VehicleForm{
		Name: v.Name, Year: v.Year, Make: v.Make, Model: v.Model,
		Type: v.Type, Status: v.Status,
	}); err != nil {
		return nil, err
	}

	set := v.Row()
	delete(set, "id")
	delete(set, "created_at")
	delete(set, "updated_at")
	if _, err := s.db.Exec(ctx, store.UpdateCmd{
		Table: "vehicles",
		Set:   set,
		Where: store.Eq{Column: "id", Value: id},
	}); err != nil {
		return nil, fmt.Errorf("updating vehicle %s: %w", id, err)
	}

	v.UpdatedAt = time.Now().UTC()
	return v, nil
}

// Delete removes the vehicle and every fuel entry and service record that
// references it, in one transaction so the cascade is atomic in both store
// modes.
func (s *vehicleService) Delete(ctx context.Context, id string) error {
	if _, err := getVehicle(ctx, s.db, id); err != nil {
		return err
	}

	err := s.db.Transaction(ctx, func(ctx context.Context, c store.Conn) error {
		for _, table := range []string{"fuel_entries", "service_records"} {
			if _, err := c.Exec(ctx, store.DeleteCmd{
				Table: table,
				Where: &store.Eq{Column: "vehicle_id", Value: id},
			}); err != nil {
				return err
			}
		}
		_, err := c.Exec(ctx, store.DeleteCmd{
			Table: "vehicles",
			Where: &store.Eq{Column: "id", Value: id},
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("deleting vehicle %s: %w", id, err)
	}

	s.log.Info(ctx, "vehicle deleted", "id", id)
	return nil
}

func validateVehicleForm(form models.VehicleForm) error {
	if form.Name == "" {
		return fmt.Errorf("%w: vehicle name is required", common.ErrValidation)
	}
	maxYear := time.Now().Year() + 1
	if form.Year < minVehicleYear || form.Year > maxYear {
		return fmt.Errorf("%w: year %d out of range %d..%d",
			common.ErrValidation, form.Year, minVehicleYear, maxYear)
	}
	switch form.Type {
	case models.VehicleTypeGas, models.VehicleTypeElectric, models.VehicleTypeHybrid:
	default:
		return fmt.Errorf("%w: unknown vehicle type %q", common.ErrValidation, form.Type)
	}
	switch form.Status {
	case models.VehicleStatusActive, models.VehicleStatusInactive:
	default:
		return fmt.Errorf("%w: unknown vehicle status %q", common.ErrValidation, form.Status)
	}
	return nil
}
