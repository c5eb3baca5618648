package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dkalnina/garagelog/internal/analytics"
	"github.com/dkalnina/garagelog/internal/common"
	"github.com/dkalnina/garagelog/internal/logging"
	"github.com/dkalnina/garagelog/internal/models"
	"github.com/dkalnina/garagelog/internal/store"
	"github.com/dkalnina/garagelog/internal/units"
)

// amountTolerance is the maximum allowed gap between the stored amount and
// quantity×pricePerUnit, in currency units.
const amountTolerance = 0.05

// maxQuantity is the per-fill plausibility ceiling: gallons for combustion
// vehicles, kWh for electric.
var maxQuantity = map[models.VehicleType]float64{
	models.VehicleTypeGas:      100,
	models.VehicleTypeHybrid:   100,
	models.VehicleTypeElectric: 1000,
}

type FuelService interface {
	GetAll(ctx context.Context) ([]models.FuelEntry, error)
	GetByVehicle(ctx context.Context, vehicleID string) ([]models.FuelEntry, error)
	GetByID(ctx context.Context, id string) (*models.FuelEntry, error)
	Create(ctx context.Context, form models.FuelForm) (*models.FuelEntry, error)
	Update(ctx context.Context, id string, form models.FuelForm) (*models.FuelEntry, error)
	Delete(ctx context.Context, id string) error
	CreateBatch(ctx context.Context, forms []models.FuelForm) ([]models.FuelEntry, error)
	UpdateBatch(ctx context.Context, items map[string]models.FuelForm) error
	DeleteBatch(ctx context.Context, ids []string) error
	Search(ctx context.Context, filter models.FuelFilter) ([]models.FuelEntry, error)
	MonthlyTotal(ctx context.Context) (float64, error)
	AnalyticsSummary(ctx context.Context, from, to string) (*analytics.Summary, error)
	MonthlyTrends(ctx context.Context, months int) ([]analytics.MonthlyStat, error)
	VehicleComparison(ctx context.Context, from, to string) ([]analytics.VehicleComparison, error)
	RecomputeAll(ctx context.Context) (int, error)
}

type fuelService struct {
	db  store.Conn
	log logging.Logger
}

func NewFuelService(db store.Conn, log logging.Logger) FuelService {
	return &fuelService{db: db, log: log}
}

func (s *fuelService) GetAll(ctx context.Context) ([]models.FuelEntry, error) {
	return fetchFuelEntries(ctx, s.db, nil)
}

func (s *fuelService) GetByVehicle(ctx context.Context, vehicleID string) ([]models.FuelEntry, error) {
	return fetchFuelEntries(ctx, s.db, &store.Eq{Column: "vehicle_id", Value: vehicleID})
}

func fetchFuelEntries(ctx context.Context, c store.Conn, where *store.Eq) ([]models.FuelEntry, error) {
	rows, err := c.Query(ctx, store.SelectCmd{
		Table:   "fuel_entries",
		Where:   where,
		OrderBy: "date",
		Desc:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("listing fuel entries: %w", err)
	}
	out := make([]models.FuelEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.FuelEntryFromRow(r))
	}
	return out, nil
}

func (s *fuelService) GetByID(ctx context.Context, id string) (*models.FuelEntry, error) {
	rows, err := s.db.Query(ctx, store.SelectCmd{
		Table: "fuel_entries",
		Where: &store.Eq{Column: "id", Value: id},
	})
	if err != nil {
		return nil, fmt.Errorf("fetching fuel entry %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("fuel entry %s: %w", id, common.ErrNotFound)
	}
	e := models.FuelEntryFromRow(rows[0])
	return &e, nil
}

func (s *fuelService) Create(ctx context.Context, form models.FuelForm) (*models.FuelEntry, error) {
	return s.createIn(ctx, s.db, form)
}

func (s *fuelService) createIn(ctx context.Context, c store.Conn, form models.FuelForm) (*models.FuelEntry, error) {
	vehicle, err := getVehicle(ctx, c, form.VehicleID)
	if err != nil {
		return nil, err
	}
	amount, err := checkFuelForm(form, vehicle.Type)
	if err != nil {
		return nil, err
	}

	mpg, err := s.computeEfficiency(ctx, c, vehicle, form, "")
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	e := models.FuelEntry{
		ID:           uuid.NewString(),
		VehicleID:    form.VehicleID,
		Date:         form.Date,
		Amount:       amount,
		Quantity:     form.Quantity,
		PricePerUnit: form.PricePerUnit,
		Mileage:      form.Mileage,
		MPG:          mpg,
		FuelStation:  form.FuelStation,
		Notes:        form.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := c.Exec(ctx, store.InsertCmd{Table: "fuel_entries", Values: e.Row()}); err != nil {
		return nil, fmt.Errorf("creating fuel entry: %w", err)
	}
	return &e, nil
}

// Update replaces the entry wholesale and recomputes its efficiency from the
// prior entry, excluding the entry itself. Later entries that used this one
// as their prior are not recomputed here; RecomputeAll repairs that.
func (s *fuelService) Update(ctx context.Context, id string, form models.FuelForm) (*models.FuelEntry, error) {
	return s.updateIn(ctx, s.db, id, form)
}

func (s *fuelService) updateIn(ctx context.Context, c store.Conn, id string, form models.FuelForm) (*models.FuelEntry, error) {
	existing, err := s.getIn(ctx, c, id)
	if err != nil {
		return nil, err
	}
	vehicle, err := getVehicle(ctx, c, form.VehicleID)
	if err != nil {
		return nil, err
	}
	amount, err := checkFuelForm(form, vehicle.Type)
	if err != nil {
		return nil, err
	}

	mpg, err := s.computeEfficiency(ctx, c, vehicle, form, id)
	if err != nil {
		return nil, err
	}

	e := models.FuelEntry{
		ID:           id,
		VehicleID:    form.VehicleID,
		Date:         form.Date,
		Amount:       amount,
		Quantity:     form.Quantity,
		PricePerUnit: form.PricePerUnit,
		Mileage:      form.Mileage,
		MPG:          mpg,
		FuelStation:  form.FuelStation,
		Notes:        form.Notes,
		CreatedAt:    existing.CreatedAt,
	}

	set := e.Row()
	delete(set, "id")
	delete(set, "created_at")
	delete(set, "updated_at")
	if _, err := c.Exec(ctx, store.UpdateCmd{
		Table: "fuel_entries",
		Set:   set,
		Where: store.Eq{Column: "id", Value: id},
	}); err != nil {
		return nil, fmt.Errorf("updating fuel entry %s: %w", id, err)
	}
	e.UpdatedAt = time.Now().UTC()
	return &e, nil
}

func (s *fuelService) getIn(ctx context.Context, c store.Conn, id string) (*models.FuelEntry, error) {
	rows, err := c.Query(ctx, store.SelectCmd{
		Table: "fuel_entries",
		Where: &store.Eq{Column: "id", Value: id},
	})
	if err != nil {
		return nil, fmt.Errorf("fetching fuel entry %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("fuel entry %s: %w", id, common.ErrNotFound)
	}
	e := models.FuelEntryFromRow(rows[0])
	return &e, nil
}

func (s *fuelService) Delete(ctx context.Context, id string) error {
	res, err := s.db.Exec(ctx, store.DeleteCmd{
		Table: "fuel_entries",
		Where: &store.Eq{Column: "id", Value: id},
	})
	if err != nil {
		return fmt.Errorf("deleting fuel entry %s: %w", id, err)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("fuel entry %s: %w", id, common.ErrNotFound)
	}
	return nil
}

// CreateBatch creates all entries inside one transaction; a failure on any
// item rolls back the whole batch.
func (s *fuelService) CreateBatch(ctx context.Context, forms []models.FuelForm) ([]models.FuelEntry, error) {
	created := make([]models.FuelEntry, 0, len(forms))
	err := s.db.Transaction(ctx, func(ctx context.Context, c store.Conn) error {
		for i, form := range forms {
			e, err := s.createIn(ctx, c, form)
			if err != nil {
				return fmt.Errorf("batch aborted at item %d of %d, no items persisted: %w",
					i+1, len(forms), err)
			}
			created = append(created, *e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *fuelService) UpdateBatch(ctx context.Context, items map[string]models.FuelForm) error {
	return s.db.Transaction(ctx, func(ctx context.Context, c store.Conn) error {
		n := 0
		for id, form := range items {
			if _, err := s.updateIn(ctx, c, id, form); err != nil {
				return fmt.Errorf("batch aborted at item %d of %d, no items persisted: %w",
					n+1, len(items), err)
			}
			n++
		}
		return nil
	})
}

func (s *fuelService) DeleteBatch(ctx context.Context, ids []string) error {
	return s.db.Transaction(ctx, func(ctx context.Context, c store.Conn) error {
		for i, id := range ids {
			res, err := c.Exec(ctx, store.DeleteCmd{
				Table: "fuel_entries",
				Where: &store.Eq{Column: "id", Value: id},
			})
			if err == nil && res.RowsAffected == 0 {
				err = fmt.Errorf("fuel entry %s: %w", id, common.ErrNotFound)
			}
			if err != nil {
				return fmt.Errorf("batch aborted at item %d of %d, no items persisted: %w",
					i+1, len(ids), err)
			}
		}
		return nil
	})
}

// Search fetches candidate rows by vehicle equality when given, then applies
// the remaining filters in memory. The store contract stays row-level CRUD.
func (s *fuelService) Search(ctx context.Context, filter models.FuelFilter) ([]models.FuelEntry, error) {
	var where *store.Eq
	if filter.VehicleID != "" {
		where = &store.Eq{Column: "vehicle_id", Value: filter.VehicleID}
	}
	entries, err := fetchFuelEntries(ctx, s.db, where)
	if err != nil {
		return nil, err
	}

	out := entries[:0:0]
	for _, e := range entries {
		if matchesFilter(e, filter) {
			out = append(out, e)
		}
	}
	return out, nil
}

func matchesFilter(e models.FuelEntry, f models.FuelFilter) bool {
	if f.DateFrom != "" && e.Date < f.DateFrom {
		return false
	}
	if f.DateTo != "" && e.Date > f.DateTo {
		return false
	}
	if f.Station != "" && !strings.Contains(strings.ToLower(e.FuelStation), strings.ToLower(f.Station)) {
		return false
	}
	if f.PriceMin != nil && e.PricePerUnit < *f.PriceMin {
		return false
	}
	if f.PriceMax != nil && e.PricePerUnit > *f.PriceMax {
		return false
	}
	if f.AmountMin != nil && e.Amount < *f.AmountMin {
		return false
	}
	if f.AmountMax != nil && e.Amount > *f.AmountMax {
		return false
	}
	if f.Text != "" {
		text := strings.ToLower(f.Text)
		if !strings.Contains(strings.ToLower(e.Notes), text) &&
			!strings.Contains(strings.ToLower(e.FuelStation), text) {
			return false
		}
	}
	return true
}

// MonthlyTotal sums the amounts of the current calendar month.
func (s *fuelService) MonthlyTotal(ctx context.Context) (float64, error) {
	entries, err := s.GetAll(ctx)
	if err != nil {
		return 0, err
	}
	prefix := time.Now().UTC().Format("2006-01")
	var total float64
	for _, e := range entries {
		if strings.HasPrefix(e.Date, prefix) {
			total += e.Amount
		}
	}
	return units.Round2(total), nil
}

func (s *fuelService) AnalyticsSummary(ctx context.Context, from, to string) (*analytics.Summary, error) {
	entries, err := s.Search(ctx, models.FuelFilter{DateFrom: from, DateTo: to})
	if err != nil {
		return nil, err
	}
	sum := analytics.Summarize(entries)
	return &sum, nil
}

func (s *fuelService) MonthlyTrends(ctx context.Context, months int) ([]analytics.MonthlyStat, error) {
	entries, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.MonthlyTrends(entries, months), nil
}

func (s *fuelService) VehicleComparison(ctx context.Context, from, to string) ([]analytics.VehicleComparison, error) {
	entries, err := s.Search(ctx, models.FuelFilter{DateFrom: from, DateTo: to})
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx, store.SelectCmd{Table: "vehicles"})
	if err != nil {
		return nil, fmt.Errorf("listing vehicles: %w", err)
	}
	vehicles := make([]models.Vehicle, 0, len(rows))
	for _, r := range rows {
		vehicles = append(vehicles, models.VehicleFromRow(r))
	}
	return analytics.CompareVehicles(vehicles, entries), nil
}

// RecomputeAll re-derives every entry's efficiency from the full chronology
// and persists the ones that changed, in one transaction. It is the bulk
// reconciliation for edits that shifted a prior entry's odometer or date.
func (s *fuelService) RecomputeAll(ctx context.Context) (int, error) {
	rows, err := s.db.Query(ctx, store.SelectCmd{Table: "vehicles"})
	if err != nil {
		return 0, fmt.Errorf("listing vehicles: %w", err)
	}
	vehicles := make([]models.Vehicle, 0, len(rows))
	for _, r := range rows {
		vehicles = append(vehicles, models.VehicleFromRow(r))
	}
	entries, err := s.GetAll(ctx)
	if err != nil {
		return 0, err
	}

	recomputed := analytics.RecomputeEfficiencies(vehicles, entries)

	byID := make(map[string]models.FuelEntry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}

	changed := 0
	err = s.db.Transaction(ctx, func(ctx context.Context, c store.Conn) error {
		for _, e := range recomputed {
			if sameMPG(byID[e.ID].MPG, e.MPG) {
				continue
			}
			var mpg any
			if e.MPG != nil {
				mpg = *e.MPG
			}
			if _, err := c.Exec(ctx, store.UpdateCmd{
				Table: "fuel_entries",
				Set:   store.Row{"mpg": mpg},
				Where: store.Eq{Column: "id", Value: e.ID},
			}); err != nil {
				return err
			}
			changed++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("recomputing efficiencies: %w", err)
	}
	if changed > 0 {
		s.log.Info(ctx, "efficiencies reconciled", "changed", changed)
	}
	return changed, nil
}

func sameMPG(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// computeEfficiency applies the efficiency rule: non-electric vehicle, a
// chronologically prior entry exists (excluding the entry being edited), the
// odometer strictly increased and quantity is positive. Anything else yields
// nil, which is distinct from zero.
func (s *fuelService) computeEfficiency(ctx context.Context, c store.Conn, vehicle *models.Vehicle, form models.FuelForm, excludeID string) (*float64, error) {
	if vehicle.Type == models.VehicleTypeElectric {
		return nil, nil
	}
	prior, err := priorEntry(ctx, c, form.VehicleID, form.Date, excludeID)
	if err != nil {
		return nil, err
	}
	if prior == nil || form.Mileage <= prior.Mileage || form.Quantity <= 0 {
		return nil, nil
	}
	mpg := float64(form.Mileage-prior.Mileage) / form.Quantity
	return &mpg, nil
}

// priorEntry returns the entry with the latest date strictly before the given
// date for the vehicle, or nil when none exists.
func priorEntry(ctx context.Context, c store.Conn, vehicleID, date, excludeID string) (*models.FuelEntry, error) {
	rows, err := c.Query(ctx, store.SelectCmd{
		Table:   "fuel_entries",
		Where:   &store.Eq{Column: "vehicle_id", Value: vehicleID},
		OrderBy: "date",
		Desc:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("fetching prior entries: %w", err)
	}
	for _, r := range rows {
		e := models.FuelEntryFromRow(r)
		if e.ID == excludeID {
			continue
		}
		if e.Date < date {
			return &e, nil
		}
	}
	return nil, nil
}

// checkFuelForm validates the form against the vehicle type and returns the
// reconciled amount: a zero amount is derived from quantity×price, a nonzero
// one must match it within the rounding tolerance.
func checkFuelForm(form models.FuelForm, vtype models.VehicleType) (float64, error) {
	if form.Date == "" {
		return 0, fmt.Errorf("%w: date is required", common.ErrValidation)
	}
	d, err := time.Parse(models.DateLayout, form.Date)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid date %q", common.ErrValidation, form.Date)
	}
	if d.After(time.Now().UTC()) {
		return 0, fmt.Errorf("%w: date %s is in the future", common.ErrValidation, form.Date)
	}
	if form.Quantity <= 0 {
		return 0, fmt.Errorf("%w: quantity must be positive", common.ErrValidation)
	}
	if ceiling := maxQuantity[vtype]; form.Quantity > ceiling {
		return 0, fmt.Errorf("%w: quantity %.2f exceeds ceiling %.0f for %s vehicles",
			common.ErrValidation, form.Quantity, ceiling, vtype)
	}
	if form.PricePerUnit <= 0 {
		return 0, fmt.Errorf("%w: price per unit must be positive", common.ErrValidation)
	}
	if form.Mileage < 0 {
		return 0, fmt.Errorf("%w: odometer reading cannot be negative", common.ErrValidation)
	}
	if form.Amount < 0 {
		return 0, fmt.Errorf("%w: amount cannot be negative", common.ErrValidation)
	}

	expected := form.Quantity * form.PricePerUnit
	if form.Amount == 0 {
		return units.Round2(expected), nil
	}
	if math.Abs(form.Amount-expected) > amountTolerance {
		return 0, fmt.Errorf("%w: amount %.2f does not match quantity×price %.2f",
			common.ErrConsistency, form.Amount, expected)
	}
	return form.Amount, nil
}
