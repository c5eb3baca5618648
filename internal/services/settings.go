package services

import (
	"context"
	"fmt"

	"github.com/dkalnina/garagelog/internal/common"
	"github.com/dkalnina/garagelog/internal/logging"
	"github.com/dkalnina/garagelog/internal/models"
	"github.com/dkalnina/garagelog/internal/store"
)

type SettingsService interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	All(ctx context.Context) ([]models.AppSetting, error)
	// Region returns the configured region code, defaulting to US.
	Region(ctx context.Context) string
}

type settingsService struct {
	db  store.Conn
	log logging.Logger
}

func NewSettingsService(db store.Conn, log logging.Logger) SettingsService {
	return &settingsService{db: db, log: log}
}

func (s *settingsService) Get(ctx context.Context, key string) (string, error) {
	rows, err := s.db.Query(ctx, store.SelectCmd{
		Table: "app_settings",
		Where: &store.Eq{Column: "key", Value: key},
	})
	if err != nil {
		return "", fmt.Errorf("fetching setting %s: %w", key, err)
	}
	if len(rows) == 0 {
		return "", fmt.Errorf("setting %s: %w", key, common.ErrNotFound)
	}
	return models.AppSettingFromRow(rows[0]).Value, nil
}

// Set upserts: update the singleton row if present, insert otherwise.
func (s *settingsService) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("%w: setting key is required", common.ErrValidation)
	}
	res, err := s.db.Exec(ctx, store.UpdateCmd{
		Table: "app_settings",
		Set:   store.Row{"value": value},
		Where: store.Eq{Column: "key", Value: key},
	})
	if err != nil {
		return fmt.Errorf("updating setting %s: %w", key, err)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	if _, err := s.db.Exec(ctx, store.InsertCmd{
		Table:  "app_settings",
		Values: store.Row{"key": key, "value": value},
	}); err != nil {
		return fmt.Errorf("inserting setting %s: %w", key, err)
	}
	return nil
}

func (s *settingsService) All(ctx context.Context) ([]models.AppSetting, error) {
	rows, err := s.db.Query(ctx, store.SelectCmd{Table: "app_settings", OrderBy: "key"})
	if err != nil {
		return nil, fmt.Errorf("listing settings: %w", err)
	}
	out := make([]models.AppSetting, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.AppSettingFromRow(r))
	}
	return out, nil
}

func (s *settingsService) Region(ctx context.Context) string {
	v, err := s.Get(ctx, "region")
	if err != nil {
		return "US"
	}
	return v
}
