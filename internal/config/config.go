// Package config manages persistent application settings. Settings live
// in a versioned JSON document; older documents are migrated on load and
// merged over the built-in defaults so every key always exists.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/karllinder/ewexport/core/sections"
)

// CurrentVersion is the version of the settings schema.
const CurrentVersion = "1.1.0"

// settingsFile is the settings document name inside the config directory.
const settingsFile = "settings.json"

// Manager holds the loaded settings document and its on-disk location.
type Manager struct {
	path     string
	settings map[string]any
}

// Defaults returns the default settings structure.
func Defaults() map[string]any {
	return map[string]any{
		"version": CurrentVersion,
		"paths": map[string]any{
			"last_easyworship_path": "",
			"last_export_path":      "",
			"recent_databases":      []any{},
			"max_recent":            float64(5),
		},
		"export": map[string]any{
			"output_directory": "",
			"font": map[string]any{
				"family": "Arial",
				"size":   float64(48),
				"color":  "#FFFFFF",
			},
			"slides": map[string]any{
				"add_intro_slide":      false,
				"intro_slide_text":     "",
				"intro_slide_group":    "Intro",
				"add_blank_slide":      false,
				"blank_slide_group":    "Blank",
				"max_lines_per_slide":  float64(4),
				"auto_break_long_lines": true,
			},
			"strip_chords":          false,
			"advanced_segmentation": false,
		},
		"duplicate_handling": map[string]any{
			"default_action": "skip",
		},
		"logging": map[string]any{
			"level":  "info",
			"format": "text",
		},
		"performance": map[string]any{
			"max_workers": float64(4),
		},
	}
}

// DefaultDir returns the per-user settings directory.
func DefaultDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "ewexport")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".ewexport")
}

// Load reads the settings document under dir, migrating older versions
// and merging over defaults. A missing file yields pure defaults.
func Load(dir string) (*Manager, error) {
	m := &Manager{
		path:     filepath.Join(dir, settingsFile),
		settings: Defaults(),
	}

	data, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var loaded map[string]any
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}

	version, _ := loaded["version"].(string)
	if version == "" {
		version = "1.0.0"
	}
	if version != CurrentVersion {
		loaded = migrate(loaded, version)
	}

	m.settings = deepMerge(Defaults(), loaded)
	m.settings["version"] = CurrentVersion
	return m, nil
}

// Save writes the settings document, creating the directory as needed.
func (m *Manager) Save() error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	m.settings["version"] = CurrentVersion
	data, err := json.MarshalIndent(m.settings, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.WriteFile(m.path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// Path returns the settings file location.
func (m *Manager) Path() string {
	return m.path
}

// migrate upgrades an older settings document to the current schema.
// Added sections come from defaults; existing values are preserved.
func migrate(old map[string]any, from string) map[string]any {
	migrated := make(map[string]any, len(old))
	for k, v := range old {
		migrated[k] = v
	}

	if from == "1.0.0" {
		defaults := Defaults()
		exp, ok := migrated["export"].(map[string]any)
		if !ok {
			migrated["export"] = defaults["export"]
		} else {
			defExp := defaults["export"].(map[string]any)
			if _, ok := exp["font"]; !ok {
				exp["font"] = defExp["font"]
			}
			if _, ok := exp["slides"]; !ok {
				exp["slides"] = defExp["slides"]
			}
		}
		if _, ok := migrated["duplicate_handling"]; !ok {
			migrated["duplicate_handling"] = defaults["duplicate_handling"]
		}
	}

	migrated["version"] = CurrentVersion
	return migrated
}

// deepMerge merges overlay into base. Nested maps merge recursively;
// overlay values win everywhere else.
func deepMerge(base, overlay map[string]any) map[string]any {
	result := make(map[string]any, len(base))
	for k, v := range base {
		result[k] = v
	}
	for k, v := range overlay {
		if bm, ok := result[k].(map[string]any); ok {
			if om, ok := v.(map[string]any); ok {
				result[k] = deepMerge(bm, om)
				continue
			}
		}
		result[k] = v
	}
	return result
}

// Get resolves a dotted key path ("export.font.size"). The second
// return reports whether the key exists.
func (m *Manager) Get(keyPath string) (any, bool) {
	var cur any = m.settings
	for _, key := range strings.Split(keyPath, ".") {
		node, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = node[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Set assigns a dotted key path, creating intermediate maps as needed.
func (m *Manager) Set(keyPath string, value any) {
	keys := strings.Split(keyPath, ".")
	node := m.settings
	for _, key := range keys[:len(keys)-1] {
		next, ok := node[key].(map[string]any)
		if !ok {
			next = map[string]any{}
			node[key] = next
		}
		node = next
	}
	node[keys[len(keys)-1]] = value
}

// GetString returns a string setting, or fallback when absent or not a
// string.
func (m *Manager) GetString(keyPath, fallback string) string {
	if v, ok := m.Get(keyPath); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return fallback
}

// GetInt returns an integer setting. JSON numbers decode as float64 and
// are truncated.
func (m *Manager) GetInt(keyPath string, fallback int) int {
	if v, ok := m.Get(keyPath); ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return fallback
}

// GetBool returns a boolean setting, or fallback when absent.
func (m *Manager) GetBool(keyPath string, fallback bool) bool {
	if v, ok := m.Get(keyPath); ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return fallback
}

// RecentDatabases returns the recently used database paths, most recent
// first.
func (m *Manager) RecentDatabases() []string {
	v, _ := m.Get("paths.recent_databases")
	list, _ := v.([]any)
	out := make([]string, 0, len(list))
	for _, it := range list {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// AddRecentDatabase puts a path at the front of the recent list,
// deduplicating and trimming to the configured maximum.
func (m *Manager) AddRecentDatabase(path string) {
	recent := m.RecentDatabases()
	out := []any{path}
	for _, p := range recent {
		if p != path {
			out = append(out, p)
		}
	}
	max := m.GetInt("paths.max_recent", 5)
	if len(out) > max {
		out = out[:max]
	}
	m.Set("paths.recent_databases", out)
}

// LoadMapping reads a section marker mapping document from path. An
// empty path yields the built-in default mapping.
func LoadMapping(path string) (*sections.Mapping, error) {
	if path == "" {
		return sections.DefaultMapping(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mapping: %w", err)
	}
	return sections.ParseMapping(data)
}
