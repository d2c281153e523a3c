// Package reminders keeps the user's writing-reminder configuration and
// fires reminders on a cron schedule. The settings are a plain in-memory
// value, not a database row: they are handed to the scheduler whole and
// replaced whole.
package reminders

import (
	"sync"

	"github.com/avelichko/inkwell/internal/entities"
)

// SettingsStore holds the current reminder settings behind a mutex.
type SettingsStore struct {
	mu       sync.RWMutex
	settings entities.ReminderSettings
}

// NewSettingsStore creates a store with reminders disabled.
func NewSettingsStore() *SettingsStore {
	return &SettingsStore{
		settings: entities.ReminderSettings{Interval: entities.ReminderDaily},
	}
}

// Get returns a copy of the current settings.
func (s *SettingsStore) Get() entities.ReminderSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	settings := s.settings
	settings.BookIDs = append([]string(nil), s.settings.BookIDs...)
	return settings
}

// Set replaces the settings wholesale.
func (s *SettingsStore) Set(settings entities.ReminderSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
}
