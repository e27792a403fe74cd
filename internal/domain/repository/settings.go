package repository

import "context"

// SettingsRepository persists key/value settings.
type SettingsRepository interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set inserts or replaces a setting.
	Set(ctx context.Context, key, value string) error
}
