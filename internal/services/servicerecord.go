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

type ServiceRecordService interface {
	GetAll(ctx context.Context) ([]models.ServiceRecord, error)
	GetByVehicle(ctx context.Context, vehicleID string) ([]models.ServiceRecord, error)
	GetByID(ctx context.Context, id string) (*models.ServiceRecord, error)
	Create(ctx context.Context, form models.ServiceForm) (*models.ServiceRecord, error)
	Update(ctx context.Context, id string, form models.ServiceForm) (*models.ServiceRecord, error)
	Delete(ctx context.Context, id string) error
	SetCompleted(ctx context.Context, id string, completed bool) error
}

type serviceRecordService struct {
	db  store.Conn
	log logging.Logger
}

func NewServiceRecordService(db store.Conn, log logging.Logger) ServiceRecordService {
	return &serviceRecordService{db: db, log: log}
}

func (s *serviceRecordService) GetAll(ctx context.Context) ([]models.ServiceRecord, error) {
	return s.fetch(ctx, nil)
}

func (s *serviceRecordService) GetByVehicle(ctx context.Context, vehicleID string) ([]models.ServiceRecord, error) {
	return s.fetch(ctx, &store.Eq{Column: "vehicle_id", Value: vehicleID})
}

func (s *serviceRecordService) fetch(ctx context.Context, where *store.Eq) ([]models.ServiceRecord, error) {
	rows, err := s.db.Query(ctx, store.SelectCmd{
		Table:   "service_records",
		Where:   where,
		OrderBy: "date",
		Desc:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("listing service records: %w", err)
	}
	out := make([]models.ServiceRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.ServiceRecordFromRow(r))
	}
	return out, nil
}

func (s *serviceRecordService) GetByID(ctx context.Context, id string) (*models.ServiceRecord, error) {
	rows, err := s.db.Query(ctx, store.SelectCmd{
		Table: "service_records",
		Where: &store.Eq{Column: "id", Value: id},
	})
	if err != nil {
		return nil, fmt.Errorf("fetching service record %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("service record %s: %w", id, common.ErrNotFound)
	}
	rec := models.ServiceRecordFromRow(rows[0])
	return &rec, nil
}

func (s *serviceRecordService) Create(ctx context.Context, form models.ServiceForm) (*models.ServiceRecord, error) {
	if _, err := getVehicle(ctx, s.db, form.VehicleID); err != nil {
		return nil, err
	}
	if err := validateServiceForm(form); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rec := models.ServiceRecord{
		ID:          uuid.NewString(),
		VehicleID:   form.VehicleID,
		Date:        form.Date,
		Type:        form.Type,
		Description: form.Description,
		Cost:        form.Cost,
		Mileage:     form.Mileage,
		Notes:       form.Notes,
		IsCompleted: form.IsCompleted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.db.Exec(ctx, store.InsertCmd{Table: "service_records", Values: rec.Row()}); err != nil {
		return nil, fmt.Errorf("creating service record: %w", err)
	}
	return &rec, nil
}

func (s *serviceRecordService) Update(ctx context.Context, id string, form models.ServiceForm) (*models.ServiceRecord, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := getVehicle(ctx, s.db, form.VehicleID); err != nil {
		return nil, err
	}
	if err := validateServiceForm(form); err != nil {
		return nil, err
	}

	rec := models.ServiceRecord{
		ID:          id,
		VehicleID:   form.VehicleID,
		Date:        form.Date,
		Type:        form.Type,
		Description: form.Description,
		Cost:        form.Cost,
		Mileage:     form.Mileage,
		Notes:       form.Notes,
		IsCompleted: form.IsCompleted,
		CreatedAt:   existing.CreatedAt,
	}
	set := rec.Row()
	delete(set, "id")
	delete(set, "created_at")
	delete(set, "updated_at")
	if _, err := s.db.Exec(ctx, store.UpdateCmd{
		Table: "service_records",
		Set:   set,
		Where: store.Eq{Column: "id", Value: id},
	}); err != nil {
		return nil, fmt.Errorf("updating service record %s: %w", id, err)
	}
	rec.UpdatedAt = time.Now().UTC()
	return &rec, nil
}

func (s *serviceRecordService) Delete(ctx context.Context, id string) error {
	res, err := s.db.Exec(ctx, store.DeleteCmd{
		Table: "service_records",
		Where: &store.Eq{Column: "id", Value: id},
	})
	if err != nil {
		return fmt.Errorf("deleting service record %s: %w", id, err)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("service record %s: %w", id, common.ErrNotFound)
	}
	return nil
}

func (s *serviceRecordService) SetCompleted(ctx context.Context, id string, completed bool) error {
	val := int64(0)
	if completed {
		val = 1
	}
	res, err := s.db.Exec(ctx, store.UpdateCmd{
		Table: "service_records",
		Set:   store.Row{"is_completed": val},
		Where: store.Eq{Column: "id", Value: id},
	})
	if err != nil {
		return fmt.Errorf("updating service record %s: %w", id, err)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("service record %s: %w", id, common.ErrNotFound)
	}
	return nil
}

func validateServiceForm(form models.ServiceForm) error {
	if form.Date == "" {
		return fmt.Errorf("%w: date is required", common.ErrValidation)
	}
	if _, err := time.Parse(models.DateLayout, form.Date); err != nil {
		return fmt.Errorf("%w: invalid date %q", common.ErrValidation, form.Date)
	}
	if form.Type == "" {
		return fmt.Errorf("%w: service type is required", common.ErrValidation)
	}
	if form.Cost < 0 {
		return fmt.Errorf("%w: cost cannot be negative", common.ErrValidation)
	}
	if form.Mileage < 0 {
		return fmt.Errorf("%w: odometer reading cannot be negative", common.ErrValidation)
	}
	return nil
}
