// Package settings holds the four runtime-mutable credentials backed
// by a JSON file. Loaded once at startup; updates through the API are
// written back immediately.
package settings

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
)

// Credentials are the external-service secrets. Field names match the
// on-disk config.json keys.
type Credentials struct {
	ClientID         string `json:"client_id"`
	AccessToken      string `json:"access_token"`
	TelegramBotToken string `json:"telegram_bot_token"`
	TelegramChatID   string `json:"telegram_chat_id"`
}

// Store is the process-wide credential store. Reads are frequent
// (every provider request), writes rare (settings form).
type Store struct {
	path string

	mu    sync.RWMutex
	creds Credentials
}

// Load reads the settings file at path. A missing file or invalid
// JSON yields empty defaults, not an error — the service starts
// unconfigured and advertises that state on the view.
func Load(path string) *Store {
	s := &Store{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[settings] read %s: %v (using defaults)", path, err)
		}
		return s
	}
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		log.Printf("[settings] %s is invalid JSON, using defaults", path)
		return s
	}
	s.creds = creds
	return s
}

// Get returns a copy of the current credentials.
func (s *Store) Get() Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds
}

// Update replaces the credentials and persists them.
func (s *Store) Update(creds Credentials) error {
	s.mu.Lock()
	s.creds = creds
	s.mu.Unlock()

	data, err := json.MarshalIndent(creds, "", "    ")
	if err != nil {
		return fmt.Errorf("settings marshal: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("settings write: %w", err)
	}
	return nil
}

// Provider returns the data-provider credential pair. Shaped for the
// dhan client's Credentials hook.
func (s *Store) Provider() (clientID, accessToken string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.ClientID, s.creds.AccessToken
}

// Telegram returns the notification channel credential pair.
func (s *Store) Telegram() (botToken, chatID string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.TelegramBotToken, s.creds.TelegramChatID
}

// ProviderConfigured reports whether both provider credentials are set.
func (s *Store) ProviderConfigured() bool {
	id, token := s.Provider()
	return id != "" && token != ""
}

// TelegramConfigured reports whether both telegram credentials are set.
func (s *Store) TelegramConfigured() bool {
	token, chat := s.Telegram()
	return token != "" && chat != ""
}
