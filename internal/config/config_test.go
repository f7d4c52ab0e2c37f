package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSettings(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, settingsFile), []byte(content), 0o644); err != nil {
		t.Fatalf("write settings fixture: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	m, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := m.GetString("export.font.family", ""); got != "Arial" {
		t.Errorf("font family = %q, want %q", got, "Arial")
	}
	if got := m.GetInt("export.slides.max_lines_per_slide", 0); got != 4 {
		t.Errorf("max lines = %d, want 4", got)
	}
	if v, _ := m.Get("version"); v != CurrentVersion {
		t.Errorf("version = %v, want %q", v, CurrentVersion)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	writeSettings(t, dir, `{
		"version": "1.1.0",
		"export": {
			"font": {"size": 72}
		}
	}`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// Overridden value wins.
	if got := m.GetInt("export.font.size", 0); got != 72 {
		t.Errorf("font size = %d, want 72", got)
	}
	// Sibling defaults survive the merge.
	if got := m.GetString("export.font.family", ""); got != "Arial" {
		t.Errorf("font family = %q, want %q", got, "Arial")
	}
	if got := m.GetBool("export.slides.auto_break_long_lines", false); !got {
		t.Error("auto break default lost in merge")
	}
}

// TestMigrateFrom100 checks that a 1.0.0 document gains the font,
// slides, and duplicate handling sections while keeping its own values.
func TestMigrateFrom100(t *testing.T) {
	dir := t.TempDir()
	writeSettings(t, dir, `{
		"version": "1.0.0",
		"export": {
			"output_directory": "/old/export"
		}
	}`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := m.GetString("export.output_directory", ""); got != "/old/export" {
		t.Errorf("output dir = %q, want preserved value", got)
	}
	if got := m.GetInt("export.font.size", 0); got != 48 {
		t.Errorf("migrated font size = %d, want 48", got)
	}
	if got := m.GetString("duplicate_handling.default_action", ""); got != "skip" {
		t.Errorf("duplicate action = %q, want %q", got, "skip")
	}
	if v, _ := m.Get("version"); v != CurrentVersion {
		t.Errorf("version after migration = %v, want %q", v, CurrentVersion)
	}
}

func TestLoadMissingVersionTreatedAsOldest(t *testing.T) {
	dir := t.TempDir()
	writeSettings(t, dir, `{"paths": {"last_export_path": "/somewhere"}}`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := m.GetString("paths.last_export_path", ""); got != "/somewhere" {
		t.Errorf("preserved value = %q", got)
	}
	if v, _ := m.Get("version"); v != CurrentVersion {
		t.Errorf("version = %v, want %q", v, CurrentVersion)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	writeSettings(t, dir, `{not json`)
	if _, err := Load(dir); err == nil {
		t.Error("Load should fail on invalid JSON")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	m.Set("export.font.size", float64(36))
	m.Set("export.output_directory", "/out")
	if err := m.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	m2, err := Load(dir)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := m2.GetInt("export.font.size", 0); got != 36 {
		t.Errorf("reloaded font size = %d, want 36", got)
	}
	if got := m2.GetString("export.output_directory", ""); got != "/out" {
		t.Errorf("reloaded output dir = %q, want %q", got, "/out")
	}
}

func TestGetSetDottedPaths(t *testing.T) {
	m := &Manager{settings: Defaults()}

	if _, ok := m.Get("no.such.key"); ok {
		t.Error("Get on missing path should report absence")
	}
	m.Set("new.nested.key", "value")
	if got := m.GetString("new.nested.key", ""); got != "value" {
		t.Errorf("Set/Get = %q, want %q", got, "value")
	}

	// Typed getters fall back on wrong types.
	if got := m.GetInt("export.font.family", 9); got != 9 {
		t.Errorf("GetInt on string = %d, want fallback 9", got)
	}
	if got := m.GetBool("export.font.family", true); !got {
		t.Error("GetBool on string should return fallback")
	}
}

func TestRecentDatabases(t *testing.T) {
	m := &Manager{settings: Defaults()}

	m.AddRecentDatabase("/a")
	m.AddRecentDatabase("/b")
	m.AddRecentDatabase("/a") // moves to front, no duplicate

	got := m.RecentDatabases()
	want := []string{"/a", "/b"}
	if len(got) != len(want) {
		t.Fatalf("recent = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("recent = %v, want %v", got, want)
		}
	}

	// List trims to the configured maximum.
	for _, p := range []string{"/c", "/d", "/e", "/f"} {
		m.AddRecentDatabase(p)
	}
	if got := m.RecentDatabases(); len(got) != 5 {
		t.Errorf("recent length = %d, want 5", len(got))
	}
}

func TestLoadMappingDefault(t *testing.T) {
	mapping, err := LoadMapping("")
	if err != nil {
		t.Fatalf("LoadMapping: %v", err)
	}
	if _, ok := mapping.Match("Refräng"); !ok {
		t.Error("default mapping should recognize Swedish markers")
	}
}

func TestLoadMappingFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.json")
	doc := `{"version": "1.0", "keep_ordinal": true, "table": {"kehrvers": "Chorus"}}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write mapping: %v", err)
	}

	mapping, err := LoadMapping(path)
	if err != nil {
		t.Fatalf("LoadMapping: %v", err)
	}
	label, ok := mapping.Match("Kehrvers 2")
	if !ok {
		t.Fatal("custom marker not matched")
	}
	if label.Display() != "Chorus 2" {
		t.Errorf("label = %q, want %q", label.Display(), "Chorus 2")
	}
}

func TestLoadMappingMissingFile(t *testing.T) {
	if _, err := LoadMapping(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("LoadMapping should fail on missing file")
	}
}
