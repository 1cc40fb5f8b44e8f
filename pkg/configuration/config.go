// Package configuration reads the INI-style settings file. Values are looked up
// with package-level getters that fall back to the caller's default when the
// file, the section or the key is missing.
package configuration

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// LocalOverrideFile is read after the main file when present; its values win.
const LocalOverrideFile = "settings.local.cfg"

// Config holds the parsed sections.
type Config struct {
	settings map[string]map[string]string
	filePath string
	mu       sync.RWMutex
}

var (
	globalConfig *Config
	once         sync.Once
)

// sectionOrder is the order sections are written in.
var sectionOrder = []string{"Interpreter", "Storage", "Console", "Network", "Session", "JWT", "Auth", "Debug"}

// Initialize loads configPath, writing a default file first when it does not exist.
func Initialize(configPath string) error {
	var err error
	once.Do(func() {
		globalConfig, err = loadConfig(configPath)
		if err != nil {
			return
		}
		if f, openErr := os.Open(LocalOverrideFile); openErr == nil {
			defer f.Close()
			err = globalConfig.parse(f)
		}
	})
	return err
}

func newConfig(filePath string) *Config {
	return &Config{
		settings: make(map[string]map[string]string),
		filePath: filePath,
	}
}

func loadConfig(filePath string) (*Config, error) {
	config := newConfig(filePath)

	file, err := os.Open(filePath)
	if os.IsNotExist(err) {
		config.createDefaultConfig()
		if err := config.saveToFile(); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return config, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if err := config.parse(file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filePath, err)
	}
	return config, nil
}

// parse merges "[Section]" and "key = value" lines into the settings.
// Blank lines and lines starting with ';' or '#' are ignored.
func (c *Config) parse(r io.Reader) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	scanner := bufio.NewScanner(r)
	section := ""
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.TrimSpace(line[1 : len(line)-1])
			if c.settings[section] == nil {
				c.settings[section] = make(map[string]string)
			}
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok || section == "" {
			continue
		}
		c.settings[section][strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return scanner.Err()
}

func (c *Config) createDefaultConfig() {
	c.settings["Interpreter"] = map[string]string{
		"operand_stack_depth": "64",
		"call_stack_depth":    "100",
		"name_width":          "5",
		"line_length":         "160",
		"max_array_cells":     "10000",
		"poll_interval":       "10ms",
		"banner":              "true",
	}
	c.settings["Storage"] = map[string]string{
		"backend":          "sqlite",
		"database":         "retrobasic.db",
		"directory":        "programs",
		"volume":           "default",
		"max_file_size_kb": "64",
	}
	c.settings["Console"] = map[string]string{
		"mode": "local",
	}
	c.settings["Network"] = map[string]string{
		"listen":                "127.0.0.1:8080",
		"pong_timeout":          "60s",
		"write_wait_timeout":    "10s",
		"max_message_size_kb":   "16",
		"output_buffer":         "1024",
		"output_flush_interval": "20ms",
	}
	c.settings["Session"] = map[string]string{
		"max_sessions": "1",
	}
	c.settings["JWT"] = map[string]string{
		"secret_key":             "",
		"token_expiration_hours": "24",
	}
	c.settings["Auth"] = map[string]string{
		"password_hash": "",
	}
	c.settings["Debug"] = map[string]string{
		"enable_debug_logging": "false",
		"log_level":            "INFO",
		"log_file":             "retrobasic.log",
		"max_log_size_mb":      "10",
		"log_rotation_count":   "3",
		"log_tinybasic":        "false",
		"log_filesystem":       "true",
		"log_database":         "true",
		"log_console":          "true",
		"log_websocket":        "true",
		"log_auth":             "true",
		"log_session":          "true",
		"log_config":           "true",
		"log_general":          "true",
	}
}

func (c *Config) saveToFile() error {
	if err := os.MkdirAll(filepath.Dir(c.filePath), 0755); err != nil {
		return err
	}
	file, err := os.Create(c.filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	fmt.Fprintln(w, "; RetroBASIC configuration file")
	fmt.Fprintln(w, "; Generated automatically - modify with care")
	fmt.Fprintln(w)
	for _, section := range sectionOrder {
		settings, exists := c.settings[section]
		if !exists {
			continue
		}
		fmt.Fprintf(w, "[%s]\n", section)
		keys := make([]string, 0, len(settings))
		for key := range settings {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Fprintf(w, "%s = %s\n", key, settings[key])
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

// GetString returns a value or defaultValue.
func GetString(section, key, defaultValue string) string {
	if globalConfig == nil {
		return defaultValue
	}
	globalConfig.mu.RLock()
	defer globalConfig.mu.RUnlock()

	if value, exists := globalConfig.settings[section][key]; exists {
		return value
	}
	return defaultValue
}

// GetInt returns an integer value or defaultValue when missing or malformed.
func GetInt(section, key string, defaultValue int) int {
	if value, err := strconv.Atoi(GetString(section, key, "")); err == nil {
		return value
	}
	return defaultValue
}

// GetBool returns a boolean value or defaultValue when missing or malformed.
func GetBool(section, key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(GetString(section, key, "")); err == nil {
		return value
	}
	return defaultValue
}

// GetDuration returns a duration such as "10ms" or defaultValue when missing or malformed.
func GetDuration(section, key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(GetString(section, key, "")); err == nil {
		return value
	}
	return defaultValue
}

// GetSection returns a copy of a section.
func GetSection(sectionName string) map[string]string {
	result := make(map[string]string)
	if globalConfig == nil {
		return result
	}
	globalConfig.mu.RLock()
	defer globalConfig.mu.RUnlock()
	for key, value := range globalConfig.settings[sectionName] {
		result[key] = value
	}
	return result
}

// SetString changes a value in memory. Save writes it back.
func SetString(section, key, value string) {
	if globalConfig == nil {
		return
	}
	globalConfig.mu.Lock()
	defer globalConfig.mu.Unlock()
	if globalConfig.settings[section] == nil {
		globalConfig.settings[section] = make(map[string]string)
	}
	globalConfig.settings[section][key] = value
}

// Save writes the configuration back to its file.
func Save() error {
	if globalConfig == nil {
		return fmt.Errorf("configuration not initialized")
	}
	globalConfig.mu.RLock()
	defer globalConfig.mu.RUnlock()
	return globalConfig.saveToFile()
}
