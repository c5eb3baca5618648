// Package models defines the persisted entities and form inputs of garagelog,
// plus the row codecs converting them to and from store rows.
package models

import "time"

// VehicleType enumerates the supported powertrains.
type VehicleType string

const (
	VehicleTypeGas      VehicleType = "gas"
	VehicleTypeElectric VehicleType = "electric"
	VehicleTypeHybrid   VehicleType = "hybrid"
)

// VehicleStatus enumerates vehicle lifecycle states.
type VehicleStatus string

const (
	VehicleStatusActive   VehicleStatus = "active"
	VehicleStatusInactive VehicleStatus = "inactive"
)

// DateLayout is the calendar-date format for entry dates, chosen so that
// lexicographic order equals chronological order.
const DateLayout = "2006-01-02"

type Vehicle struct {
	ID        string
	Name      string
	Year      int
	Make      string
	Model     string
	Type      VehicleType
	Status    VehicleStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FuelEntry is one fill-up (or charge, for electric vehicles).
//
// MPG is nil when there was no basis to compute efficiency: electric vehicle,
// first entry for the vehicle, odometer not increased, or zero quantity.
// nil and zero are distinct values.
type FuelEntry struct {
	ID           string
	VehicleID    string
	Date         string // DateLayout
	Amount       float64
	Quantity     float64
	PricePerUnit float64
	Mileage      int64
	MPG          *float64
	FuelStation  string
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type ServiceRecord struct {
	ID          string
	VehicleID   string
	Date        string
	Type        string
	Description string
	Cost        float64
	Mileage     int64
	Notes       string
	IsCompleted bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type AppSetting struct {
	Key       string
	Value     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type MigrationLogEntry struct {
	ID        int64
	Version   string
	AppliedAt time.Time
	Success   bool
}
