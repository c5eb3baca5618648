package models

// VehicleForm is the input for creating a vehicle.
type VehicleForm struct {
	Name  string
	Year  int
	Make  string
	Model string
	Type  VehicleType
	// Status is optional; empty defaults to active.
	Status VehicleStatus
}

// VehicleUpdate carries a partial vehicle edit. Nil fields are left unchanged.
type VehicleUpdate struct {
	Name   *string
	Year   *int
	Make   *string
	Model  *string
	Type   *VehicleType
	Status *VehicleStatus
}

// FuelForm is the input for creating or fully replacing a fuel entry.
// Amount may be zero, in which case it is derived as Quantity×PricePerUnit.
type FuelForm struct {
	VehicleID    string
	Date         string
	Amount       float64
	Quantity     float64
	PricePerUnit float64
	Mileage      int64
	FuelStation  string
	Notes        string
}

// ServiceForm is the input for creating or fully replacing a service record.
type ServiceForm struct {
	VehicleID   string
	Date        string
	Type        string
	Description string
	Cost        float64
	Mileage     int64
	Notes       string
	IsCompleted bool
}

// FuelFilter selects fuel entries by an arbitrary subset of criteria; all set
// filters are combined with AND.
type FuelFilter struct {
	VehicleID string
	DateFrom  string
	DateTo    string
	Station   string // substring match, case-insensitive
	PriceMin  *float64
	PriceMax  *float64
	AmountMin *float64
	AmountMax *float64
	Text      string // free text over notes and station
}
