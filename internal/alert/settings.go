package alert

import (
	"context"
	"encoding/json"

	"shopledger/backend/internal/domain"
	"shopledger/backend/internal/kv"
)

const (
	keyAlertSettings  = "alert_settings"
	keyLastAlertTimes = "last_alert_times"
)

// LowStockKey is the throttle key for one item's low-stock alert.
func LowStockKey(itemName string) string {
	return "low_stock_" + itemName
}

func DefaultSettings() domain.AlertSettings {
	return domain.AlertSettings{
		LowStockEnabled:       true,
		CreditReminderEnabled: true,
		StockAlertFrequency:   domain.FrequencyDaily,
		CreditReminderDays:    3,
		BusinessHours:         domain.TimeWindow{Start: "08:00", End: "20:00"},
		QuietHours:            domain.QuietWindow{Enabled: false, Start: "22:00", End: "07:00"},
	}
}

// SettingsStore persists alert configuration and per-alert last-fired times
// (epoch milliseconds keyed by alert key).
type SettingsStore struct {
	store kv.Store
}

func NewSettingsStore(store kv.Store) *SettingsStore {
	return &SettingsStore{store: store}
}

func (s *SettingsStore) Load(ctx context.Context) (domain.AlertSettings, error) {
	raw, ok, err := s.store.Get(ctx, keyAlertSettings)
	if err != nil {
		return domain.AlertSettings{}, &kv.StorageError{Op: "get", Key: keyAlertSettings, Err: err}
	}
	if !ok || raw == "" {
		return DefaultSettings(), nil
	}

	var settings domain.AlertSettings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return domain.AlertSettings{}, &kv.StorageError{Op: "decode", Key: keyAlertSettings, Err: err}
	}
	return settings, nil
}

func (s *SettingsStore) Save(ctx context.Context, settings domain.AlertSettings) error {
	payload, err := json.Marshal(settings)
	if err != nil {
		return &kv.StorageError{Op: "encode", Key: keyAlertSettings, Err: err}
	}
	if err := s.store.Set(ctx, keyAlertSettings, string(payload)); err != nil {
		return &kv.StorageError{Op: "set", Key: keyAlertSettings, Err: err}
	}
	return nil
}

func (s *SettingsStore) LastAlertTimes(ctx context.Context) (map[string]int64, error) {
	raw, ok, err := s.store.Get(ctx, keyLastAlertTimes)
	if err != nil {
		return nil, &kv.StorageError{Op: "get", Key: keyLastAlertTimes, Err: err}
	}
	if !ok || raw == "" {
		return map[string]int64{}, nil
	}

	var times map[string]int64
	if err := json.Unmarshal([]byte(raw), &times); err != nil {
		return nil, &kv.StorageError{Op: "decode", Key: keyLastAlertTimes, Err: err}
	}
	return times, nil
}

func (s *SettingsStore) SaveLastAlertTimes(ctx context.Context, times map[string]int64) error {
	payload, err := json.Marshal(times)
	if err != nil {
		return &kv.StorageError{Op: "encode", Key: keyLastAlertTimes, Err: err}
	}
	if err := s.store.Set(ctx, keyLastAlertTimes, string(payload)); err != nil {
		return &kv.StorageError{Op: "set", Key: keyLastAlertTimes, Err: err}
	}
	return nil
}
