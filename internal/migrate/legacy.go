// Package migrate implements the one-shot import from the legacy key-value
// store into the record store, with backup and rollback.
package migrate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// Legacy storage keys. The legacy store kept each entity list as one JSON
// array under its own key.
const (
	keyVehicles       = "@garagelog:vehicles"
	keyFuelEntries    = "@garagelog:fuel_entries"
	keyServiceRecords = "@garagelog:service_records"
)

// LegacyStore is the read/write surface of the legacy key-value snapshot
// store.
type LegacyStore interface {
	// GetItem returns the value and whether the key exists.
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}

// FileLegacyStore is a LegacyStore over a single JSON file holding the
// key→value map. A missing file reads as an empty store.
type FileLegacyStore struct {
	path string
}

func NewFileLegacyStore(path string) *FileLegacyStore {
	return &FileLegacyStore{path: path}
}

func (s *FileLegacyStore) load() (map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading legacy store: %w", err)
	}
	data := map[string]string{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parsing legacy store: %w", err)
	}
	return data, nil
}

func (s *FileLegacyStore) save(data map[string]string) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("writing legacy store: %w", err)
	}
	return nil
}

func (s *FileLegacyStore) GetItem(ctx context.Context, key string) (string, bool, error) {
	data, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := data[key]
	return v, ok, nil
}

func (s *FileLegacyStore) SetItem(ctx context.Context, key, value string) error {
	data, err := s.load()
	if err != nil {
		return err
	}
	data[key] = value
	return s.save(data)
}

func (s *FileLegacyStore) RemoveItem(ctx context.Context, key string) error {
	data, err := s.load()
	if err != nil {
		return err
	}
	delete(data, key)
	return s.save(data)
}

func (s *FileLegacyStore) Keys(ctx context.Context) ([]string, error) {
	data, err := s.load()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	return keys, nil
}

// Legacy record shapes, as the mobile app serialized them.

type legacyVehicle struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Year   int    `json:"year"`
	Make   string `json:"make"`
	Model  string `json:"model"`
	Type   string `json:"type"`
	Status string `json:"status"`
}

type legacyFuelEntry struct {
	ID           string  `json:"id"`
	VehicleID    string  `json:"vehicleId"`
	Date         string  `json:"date"`
	Amount       float64 `json:"amount"`
	Quantity     float64 `json:"quantity"`
	PricePerUnit float64 `json:"pricePerUnit"`
	Mileage      int64   `json:"mileage"`
	FuelStation  string  `json:"fuelStation,omitempty"`
	Notes        string  `json:"notes,omitempty"`
}

type legacyServiceRecord struct {
	ID          string  `json:"id"`
	VehicleID   string  `json:"vehicleId"`
	Date        string  `json:"date"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Cost        float64 `json:"cost"`
	Mileage     int64   `json:"mileage"`
	Notes       string  `json:"notes,omitempty"`
	IsCompleted bool    `json:"isCompleted"`
}

// snapshot is the backed-up legacy payload.
type snapshot struct {
	Vehicles       []legacyVehicle       `json:"vehicles"`
	FuelEntries    []legacyFuelEntry     `json:"fuelEntries"`
	ServiceRecords []legacyServiceRecord `json:"serviceRecords"`
}
