package cmd

import (
	"bytes"
	"context"
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/etnz/tradebook"
	"github.com/google/subcommands"
)

// sampleLedger holds a stock buy and a covered call, in the canonical form.
const sampleLedger = `{"id":1,"date":"2025-01-15","symbol":"AAPL","type":"stock","action":"buy_to_open","quantity":10,"price":150,"currency":"USD","fees":1,"createdAt":"2025-01-15T10:00:00Z"}
{"id":2,"date":"2025-02-03","symbol":"MSFT","type":"call","action":"sell_to_open","quantity":1,"price":2.5,"currency":"USD","strikePrice":450,"expirationDate":"2025-03-21","premium":2.5,"createdAt":"2025-02-03T10:00:00Z"}
`

// Helper function to create a temporary ledger file
func createTempLedger(t *testing.T, content string) string {
	t.Helper()
	tmp := t.TempDir()
	tmpfile, err := os.Create(filepath.Join(tmp, "test_ledger.jsonl"))
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer tmpfile.Close()

	if _, err := tmpfile.WriteString(content); err != nil {
		t.Fatalf("Failed to write to temp file: %v", err)
	}
	return tmpfile.Name()
}

// set assigns v to the global *p for the duration of the test.
func set[T any](t *testing.T, p *T, v T) {
	old := *p
	*p = v
	t.Cleanup(func() { *p = old })
}

// setup points the application to a ledger file holding content, and captures
// its output. An empty content means no ledger file.
func setup(t *testing.T, content string) (ledger string, out *bytes.Buffer) {
	t.Helper()
	for _, env := range []string{EnvStore, EnvLedger, EnvDatabase, EnvCurrency, EnvLogLevel, EnvModel, EnvGeminiKey} {
		t.Setenv(env, "")
	}
	if content == "" {
		ledger = filepath.Join(t.TempDir(), "trades.jsonl")
	} else {
		ledger = createTempLedger(t, content)
	}
	set(t, configFile, "")
	set(t, storeKind, StoreLedger)
	set(t, ledgerFile, ledger)
	set(t, databaseFile, "")
	set(t, logLevel, "error")

	out = new(bytes.Buffer)
	set[io.Writer](t, &stdout, out)
	set[io.Writer](t, &stderr, new(bytes.Buffer))
	set(t, &now, func() time.Time { return time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC) })
	return ledger, out
}

// run parses args for c and executes it.
func run(t *testing.T, c subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	c.SetFlags(f)
	if err := f.Parse(args); err != nil {
		t.Fatalf("%s: failed to parse %q: %v", c.Name(), args, err)
	}
	return c.Execute(context.Background(), f)
}

// mustReadLedger decodes the ledger file at path.
func mustReadLedger(t *testing.T, path string) []tradebook.Trade {
	t.Helper()
	l, err := readLedger(path)
	if err != nil {
		t.Fatalf("readLedger(%q) unexpected error: %v", path, err)
	}
	return l.Snapshot()
}
