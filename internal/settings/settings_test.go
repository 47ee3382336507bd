package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	s := Load(filepath.Join(t.TempDir(), "nope.json"))
	if s.ProviderConfigured() || s.TelegramConfigured() {
		t.Error("missing file should leave credentials unset")
	}
}

func TestLoad_InvalidJSONYieldsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(path, []byte("{not json"), 0o600)

	s := Load(path)
	if s.ProviderConfigured() {
		t.Error("invalid JSON should leave credentials unset")
	}
}

func TestUpdate_PersistsAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	s := Load(path)

	err := s.Update(Credentials{
		ClientID:         "cid",
		AccessToken:      "tok",
		TelegramBotToken: "bot",
		TelegramChatID:   "chat",
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if !s.ProviderConfigured() || !s.TelegramConfigured() {
		t.Error("store should report configured after update")
	}
	id, tok := s.Provider()
	if id != "cid" || tok != "tok" {
		t.Errorf("provider creds = %q/%q", id, tok)
	}

	// A fresh store reads the persisted values.
	reloaded := Load(path)
	if got := reloaded.Get(); got.TelegramBotToken != "bot" || got.TelegramChatID != "chat" {
		t.Errorf("reloaded creds = %+v", got)
	}
}

func TestConfigured_RequiresBothFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	s := Load(path)
	s.Update(Credentials{ClientID: "cid"})
	if s.ProviderConfigured() {
		t.Error("client id alone must not count as configured")
	}
}
