// Package user defines per-user preference storage.
// These repositories abstract the data persistence details, ensuring the core
// application is clean and decoupled from the database.
package user

import (
	"context"
	"errors"
)

// PreferenceKind is the value type a preference accepts from async updates.
type PreferenceKind string

const (
	PreferenceBool PreferenceKind = "bool"
	PreferenceInt  PreferenceKind = "int"
)

var (
	// ErrNotAjaxUpdatable is returned when a client tries to write a preference
	// that was never registered for async updates.
	ErrNotAjaxUpdatable = errors.New("preference is not updatable from the client")
	// ErrInvalidPreferenceValue is returned when a value does not match the registered kind.
	ErrInvalidPreferenceValue = errors.New("invalid preference value")
)

// Preference is one stored user preference.
type Preference struct {
	UserID int64  `json:"userId"`
	Name   string `json:"name"`
	Value  string `json:"value"`
}

// PreferenceRepository persists user preferences.
type PreferenceRepository interface {
	Get(ctx context.Context, userID int64, name string) (*Preference, error)
	GetBool(ctx context.Context, userID int64, name string, defaultValue bool) (bool, error)
	Set(ctx context.Context, userID int64, name, value string) error
}
