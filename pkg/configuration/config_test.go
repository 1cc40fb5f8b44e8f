package configuration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// withConfig installs c as the global configuration for the duration of the test.
func withConfig(t *testing.T, c *Config) {
	t.Helper()
	previous := globalConfig
	globalConfig = c
	t.Cleanup(func() { globalConfig = previous })
}

func TestGettersReturnDefaultsWhenUninitialized(t *testing.T) {
	withConfig(t, nil)

	if got := GetString("Storage", "backend", "disk"); got != "disk" {
		t.Errorf("GetString = %q, want %q", got, "disk")
	}
	if got := GetInt("Interpreter", "name_width", 5); got != 5 {
		t.Errorf("GetInt = %d, want 5", got)
	}
	if got := GetBool("Interpreter", "banner", true); !got {
		t.Errorf("GetBool = false, want true")
	}
	if got := GetDuration("Interpreter", "poll_interval", time.Second); got != time.Second {
		t.Errorf("GetDuration = %v, want 1s", got)
	}
}

func TestParse(t *testing.T) {
	c := newConfig("unused.cfg")
	input := `; comment
# another comment
[Interpreter]
name_width = 8
banner=false
poll_interval = 5ms

[Storage]
backend = disk
orphan line without equals
`
	if err := c.parse(strings.NewReader(input)); err != nil {
		t.Fatalf("parse: %v", err)
	}
	withConfig(t, c)

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"int", GetInt("Interpreter", "name_width", 5), 8},
		{"bool", GetBool("Interpreter", "banner", true), false},
		{"duration", GetDuration("Interpreter", "poll_interval", 0), 5 * time.Millisecond},
		{"string", GetString("Storage", "backend", "sqlite"), "disk"},
		{"missing key", GetString("Storage", "volume", "default"), "default"},
		{"missing section", GetInt("Session", "max_sessions", 1), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestMalformedValuesFallBack(t *testing.T) {
	c := newConfig("unused.cfg")
	if err := c.parse(strings.NewReader("[Interpreter]\nname_width = wide\nbanner = maybe\n")); err != nil {
		t.Fatalf("parse: %v", err)
	}
	withConfig(t, c)

	if got := GetInt("Interpreter", "name_width", 5); got != 5 {
		t.Errorf("GetInt = %d, want default 5", got)
	}
	if got := GetBool("Interpreter", "banner", true); !got {
		t.Errorf("GetBool = false, want default true")
	}
}

func TestLoadConfigWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.cfg")

	c, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default file not written: %v", err)
	}

	reloaded, err := loadConfig(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	for _, section := range sectionOrder {
		for key, want := range c.settings[section] {
			if got := reloaded.settings[section][key]; got != want {
				t.Errorf("[%s] %s = %q after reload, want %q", section, key, got, want)
			}
		}
	}
}

func TestSetStringAndGetSection(t *testing.T) {
	withConfig(t, newConfig(filepath.Join(t.TempDir(), "settings.cfg")))

	SetString("Console", "mode", "websocket")
	section := GetSection("Console")
	if section["mode"] != "websocket" {
		t.Errorf("GetSection(Console)[mode] = %q, want websocket", section["mode"])
	}
	section["mode"] = "changed"
	if got := GetString("Console", "mode", ""); got != "websocket" {
		t.Errorf("GetSection returned a live map: mode = %q", got)
	}
	if err := Save(); err != nil {
		t.Errorf("Save: %v", err)
	}
}
