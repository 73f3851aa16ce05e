// Package cmd implements the tb command line application to manage a trade
// book.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/tradebook"
	"github.com/etnz/tradebook/sqlite"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// groups lists the subcommands by group, in help order.
var groups = []struct {
	name     string
	commands []subcommands.Command
}{
	{"trades", []subcommands.Command{&addCmd{}, &updateCmd{}, &deleteCmd{}, &listCmd{}}},
	{"reports", []subcommands.Command{&statsCmd{}, &positionsCmd{}, &assistCmd{}}},
	{"ledger", []subcommands.Command{&formatLedgerCmd{}, &importCmd{}, &exportCmd{}}},
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, g := range groups {
		for _, cmd := range g.commands {
			c.Register(cmd, g.name)
		}
	}
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	configFile   = flag.String("config", "tradebook.yaml", "Path to the configuration file (YAML)")
	storeKind    = flag.String("store", "", "Trade store, ledger or sqlite. Overrides the configuration.")
	ledgerFile   = flag.String("ledger-file", "", "Path to the ledger file (JSONL format). Overrides the configuration.")
	databaseFile = flag.String("db", "", "Path to the sqlite database. Overrides the configuration.")
	logLevel     = flag.String("log-level", "", "Log level (debug, info, warn, error). Overrides the configuration.")
)

var (
	now              = time.Now
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// loadConfig loads the configuration and applies the global flags.
func loadConfig() (*Config, error) {
	c, err := LoadConfig(*configFile)
	if err != nil {
		return nil, err
	}
	for _, o := range []struct {
		flag  string
		value *string
	}{
		{*storeKind, &c.Store},
		{*ledgerFile, &c.Ledger},
		{*databaseFile, &c.Database},
		{*logLevel, &c.LogLevel},
	} {
		if o.flag != "" {
			*o.value = o.flag
		}
	}
	c.normalize()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return c, nil
}

// store is the repository a command works on.
type store struct {
	tradebook.Repository
	cfg    *Config
	log    zerolog.Logger
	ledger *tradebook.Ledger // ledger is nil for the sqlite store.
	db     *sqlite.Store
}

// openStore loads the configuration and opens the configured repository.
func openStore() (*store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := newLogger(stderr, cfg.LogLevel)
	tradebook.SetLogger(log)

	s := &store{cfg: cfg, log: log}
	switch cfg.Store {
	case StoreSQLite:
		s.db, err = sqlite.Open(cfg.Database, log)
		if err != nil {
			return nil, fmt.Errorf("error opening database %q: %w", cfg.Database, err)
		}
		s.Repository = s.db
	default:
		s.ledger, err = readLedger(cfg.Ledger)
		if err != nil {
			return nil, err
		}
		s.Repository = s.ledger
	}
	return s, nil
}

// Save persists the changes made to a ledger store. The sqlite store is
// always up to date.
func (s *store) Save() error {
	if s.ledger == nil {
		return nil
	}
	return writeLedger(s.cfg.Ledger, s.ledger)
}

func (s *store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// currency returns the currency of amounts entered in cur. An empty cur
// means the book currency, or the configured one for an empty book.
func (s *store) currency(cur string) string {
	if cur != "" {
		return cur
	}
	var book string
	switch {
	case s.ledger != nil:
		book = s.ledger.Currency()
	case s.db != nil:
		book, _ = s.db.Currency()
	}
	if book == "" {
		return s.cfg.Currency
	}
	return book
}

// readLedger decodes the ledger file at path. If the file does not exist, it
// returns a new empty ledger.
func readLedger(path string) (*tradebook.Ledger, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return tradebook.NewLedger(), nil
		}
		return nil, fmt.Errorf("could not open ledger file %q: %w", path, err)
	}
	defer f.Close()

	ledger, err := tradebook.DecodeLedger(f)
	if err != nil {
		return nil, fmt.Errorf("could not decode ledger file %q: %w", path, err)
	}
	return ledger, nil
}

// writeLedger replaces the ledger file at path with the canonical encoding of
// ledger. The file is written aside and renamed over path.
func writeLedger(path string, ledger *tradebook.Ledger) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating ledger directory %q: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".ledger-*.jsonl")
	if err != nil {
		return fmt.Errorf("error creating ledger file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return fmt.Errorf("error creating ledger file: %w", err)
	}

	if err := tradebook.EncodeLedger(tmp, ledger); err != nil {
		tmp.Close()
		return fmt.Errorf("error encoding ledger %q: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error writing ledger %q: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("error replacing ledger %q: %w", path, err)
	}
	return nil
}

// printMarkdown renders md in the terminal, or prints it as is if raw.
func printMarkdown(md string, raw bool) {
	if !raw {
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
		if err == nil {
			out, err := r.Render(md)
			if err == nil {
				fmt.Fprint(stdout, out)
				return
			}
		}
	}
	fmt.Fprint(stdout, md)
}

// fail prints the error message and returns ExitFailure.
func fail(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(stderr, format+"\n", args...)
	return subcommands.ExitFailure
}
