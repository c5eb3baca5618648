package models

import (
	"time"

	"github.com/dkalnina/garagelog/internal/store"
)

// Row codecs. The embedded engine hands back int64/float64/string/nil and the
// fallback backend stores exactly the values these codecs emit, so decoding
// is the same for both.

func (v Vehicle) Row() store.Row {
	r := store.Row{
		"id":     v.ID,
		"name":   v.Name,
		"year":   int64(v.Year),
		"make":   v.Make,
		"model":  v.Model,
		"type":   string(v.Type),
		"status": string(v.Status),
	}
	putTimes(r, v.CreatedAt, v.UpdatedAt)
	return r
}

func VehicleFromRow(r store.Row) Vehicle {
	return Vehicle{
		ID:        asString(r["id"]),
		Name:      asString(r["name"]),
		Year:      int(asInt(r["year"])),
		Make:      asString(r["make"]),
		Model:     asString(r["model"]),
		Type:      VehicleType(asString(r["type"])),
		Status:    VehicleStatus(asString(r["status"])),
		CreatedAt: asTime(r["created_at"]),
		UpdatedAt: asTime(r["updated_at"]),
	}
}

func (e FuelEntry) Row() store.Row {
	r := store.Row{
		"id":             e.ID,
		"vehicle_id":     e.VehicleID,
		"date":           e.Date,
		"amount":         e.Amount,
		"quantity":       e.Quantity,
		"price_per_unit": e.PricePerUnit,
		"mileage":        e.Mileage,
		"fuel_station":   e.FuelStation,
		"notes":          e.Notes,
	}
	if e.MPG != nil {
		r["mpg"] = *e.MPG
	} else {
		r["mpg"] = nil
	}
	putTimes(r, e.CreatedAt, e.UpdatedAt)
	return r
}

func FuelEntryFromRow(r store.Row) FuelEntry {
	e := FuelEntry{
		ID:           asString(r["id"]),
		VehicleID:    asString(r["vehicle_id"]),
		Date:         asString(r["date"]),
		Amount:       asFloat(r["amount"]),
		Quantity:     asFloat(r["quantity"]),
		PricePerUnit: asFloat(r["price_per_unit"]),
		Mileage:      asInt(r["mileage"]),
		FuelStation:  asString(r["fuel_station"]),
		Notes:        asString(r["notes"]),
		CreatedAt:    asTime(r["created_at"]),
		UpdatedAt:    asTime(r["updated_at"]),
	}
	if r["mpg"] != nil {
		mpg := asFloat(r["mpg"])
		e.MPG = &mpg
	}
	return e
}

func (s ServiceRecord) Row() store.Row {
	completed := int64(0)
	if s.IsCompleted {
		completed = 1
	}
	r := store.Row{
		"id":           s.ID,
		"vehicle_id":   s.VehicleID,
		"date":         s.Date,
		"type":         s.Type,
		"description":  s.Description,
		"cost":         s.Cost,
		"mileage":      s.Mileage,
		"notes":        s.Notes,
		"is_completed": completed,
	}
	putTimes(r, s.CreatedAt, s.UpdatedAt)
	return r
}

// putTimes adds timestamp columns only when set; otherwise the store stamps
// them on insert.
func putTimes(r store.Row, created, updated time.Time) {
	if !created.IsZero() {
		r["created_at"] = created.UTC().Format(time.RFC3339)
	}
	if !updated.IsZero() {
		r["updated_at"] = updated.UTC().Format(time.RFC3339)
	}
}

func ServiceRecordFromRow(r store.Row) ServiceRecord {
	return ServiceRecord{
		ID:          asString(r["id"]),
		VehicleID:   asString(r["vehicle_id"]),
		Date:        asString(r["date"]),
		Type:        asString(r["type"]),
		Description: asString(r["description"]),
		Cost:        asFloat(r["cost"]),
		Mileage:     asInt(r["mileage"]),
		Notes:       asString(r["notes"]),
		IsCompleted: asInt(r["is_completed"]) != 0,
		CreatedAt:   asTime(r["created_at"]),
		UpdatedAt:   asTime(r["updated_at"]),
	}
}

func AppSettingFromRow(r store.Row) AppSetting {
	return AppSetting{
		Key:       asString(r["key"]),
		Value:     asString(r["value"]),
		CreatedAt: asTime(r["created_at"]),
		UpdatedAt: asTime(r["updated_at"]),
	}
}

func MigrationLogFromRow(r store.Row) MigrationLogEntry {
	return MigrationLogEntry{
		ID:        asInt(r["id"]),
		Version:   asString(r["version"]),
		AppliedAt: asTime(r["applied_at"]),
		Success:   asInt(r["success"]) != 0,
	}
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func asInt(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}

func asTime(v any) time.Time {
	s, ok := v.(string)
	if !ok {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
