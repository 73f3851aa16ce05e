package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tradebook.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func clearEnv(t *testing.T) {
	for _, env := range []string{EnvStore, EnvLedger, EnvDatabase, EnvCurrency, EnvLogLevel, EnvModel, EnvGeminiKey} {
		t.Setenv(env, "")
	}
}

func TestLoadConfig(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
store: SQLite
database: data/book.db
currency: eur
assist:
  model: gemini-2.5-pro
`)
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() unexpected error: %v", err)
	}
	want := DefaultConfig()
	want.Store = StoreSQLite
	want.Database = "data/book.db"
	want.Currency = "EUR"
	want.Assist.Model = "gemini-2.5-pro"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("LoadConfig() mismatch (-want +got):\n%s", diff)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
}

func TestLoadConfig_Environment(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "ledger: from-file.jsonl\nlog_level: info\n")
	t.Setenv(EnvLedger, "from-env.jsonl")
	t.Setenv(EnvGeminiKey, "secret")

	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() unexpected error: %v", err)
	}
	if got.Ledger != "from-env.jsonl" || got.LogLevel != "info" || got.Assist.APIKey != "secret" {
		t.Errorf("LoadConfig() = %+v", got)
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	clearEnv(t)
	got, err := LoadConfig(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() unexpected error: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), got); diff != "" {
		t.Errorf("LoadConfig() of a missing file mismatch (-want +got):\n%s", diff)
	}

	if _, err := LoadConfig(writeConfig(t, "store: [ledger")); err == nil {
		t.Error("LoadConfig() of invalid YAML expected an error")
	}
}

func TestLoadConfig_DotEnv(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides a variable already set, even to "".
	os.Unsetenv(EnvLedger)
	dir := t.TempDir()
	t.Chdir(dir)

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("TRADEBOOK_LEDGER=from-dotenv.jsonl\n"), 0644); err != nil {
		t.Fatalf("Failed to write .env: %v", err)
	}
	got, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() unexpected error: %v", err)
	}
	if got.Ledger != "from-dotenv.jsonl" {
		t.Errorf("LoadConfig().Ledger = %q, want the .env value", got.Ledger)
	}

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("TRADEBOOK_STORE=\"unterminated\n"), 0644); err != nil {
		t.Fatalf("Failed to write .env: %v", err)
	}
	if _, err := LoadConfig(""); err == nil || !strings.Contains(err.Error(), ".env") {
		t.Errorf("LoadConfig() with a malformed .env = %v, want a .env error", err)
	}
}

func TestConfigValidate(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"unknown store", func(c *Config) { c.Store = "postgres" }, "invalid store"},
		{"no ledger file", func(c *Config) { c.Ledger = "" }, "ledger file is required"},
		{"no database", func(c *Config) { c.Store, c.Database = StoreSQLite, "" }, "database file is required"},
		{"unknown currency", func(c *Config) { c.Currency = "XXQ" }, "XXQ"},
		{"unknown log level", func(c *Config) { c.LogLevel = "chatty" }, "invalid log_level"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := DefaultConfig()
			tc.modify(c)
			err := c.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("Validate() = %v, want an error containing %q", err, tc.want)
			}
		})
	}
}

func TestGlobalFlagsOverride(t *testing.T) {
	setup(t, "")
	set(t, configFile, writeConfig(t, "store: ledger\ncurrency: EUR\n"))
	set(t, storeKind, "SQLITE")
	set(t, databaseFile, filepath.Join(t.TempDir(), "flag.db"))

	got, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() unexpected error: %v", err)
	}
	if got.Store != StoreSQLite || got.Database != *databaseFile || got.Currency != "EUR" || got.LogLevel != "error" {
		t.Errorf("loadConfig() = %+v", got)
	}
}
