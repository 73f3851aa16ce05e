package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/tradebook"
	"github.com/google/subcommands"
)

// --- Format Ledger Command ---

type formatLedgerCmd struct {
	output string
}

func (*formatLedgerCmd) Name() string     { return "format-ledger" }
func (*formatLedgerCmd) Synopsis() string { return "formats the ledger file into a canonical form" }
func (*formatLedgerCmd) Usage() string {
	return `tb format-ledger [-o <file>]

  Validates and formats the ledger file: trades in chronological order, one
  canonical JSON object per line. By default the ledger is formatted in place.
  Use -o - to print to the standard output.
`
}

func (p *formatLedgerCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.output, "o", "", "Output file. Defaults to the ledger file itself, - for stdout.")
}

func (p *formatLedgerCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		return fail("Error: %v", err)
	}
	tradebook.SetLogger(newLogger(stderr, cfg.LogLevel))

	ledger, err := readLedger(cfg.Ledger)
	if err != nil {
		return fail("Error decoding ledger: %v", err)
	}

	switch p.output {
	case "":
		err = writeLedger(cfg.Ledger, ledger)
	case "-":
		err = tradebook.EncodeLedger(stdout, ledger)
	default:
		err = writeLedger(p.output, ledger)
	}
	if err != nil {
		return fail("Error encoding ledger: %v", err)
	}

	if p.output != "-" {
		fmt.Fprintf(stderr, "Ledger file '%s' has been formatted.\n", cfg.Ledger)
	}
	return subcommands.ExitSuccess
}

// --- Import Command ---

type importCmd struct {
	keepIDs bool
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "add the trades of ledger files to the store" }
func (*importCmd) Usage() string {
	return `tb import [-keep-ids] <file.jsonl>...

  Reads ledger files and adds their trades to the configured store, for
  instance to move a ledger into a sqlite database. Trades get new ids unless
  -keep-ids is given. "-" reads the standard input.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.keepIDs, "keep-ids", false, "Keep the ids of the imported trades")
}

func (c *importCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	s, err := openStore()
	if err != nil {
		return fail("Error opening store: %v", err)
	}
	defer s.Close()

	count := 0
	for _, name := range f.Args() {
		var r io.Reader = os.Stdin
		if name != "-" {
			file, err := os.Open(name)
			if err != nil {
				return fail("Error: %v", err)
			}
			defer file.Close()
			r = file
		}
		ledger, err := tradebook.DecodeLedger(r)
		if err != nil {
			return fail("Error decoding %q: %v", name, err)
		}
		for _, t := range ledger.Snapshot() {
			if !c.keepIDs {
				t.ID = 0
			}
			if _, err := s.Add(t); err != nil {
				return fail("Error importing trade %d of %q: %v", t.ID, name, err)
			}
			count++
		}
	}
	if err := s.Save(); err != nil {
		return fail("Error saving ledger: %v", err)
	}
	fmt.Fprintf(stdout, "Imported %d trades\n", count)
	return subcommands.ExitSuccess
}

// --- Export Command ---

type exportCmd struct {
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write the trades of the store as a ledger file" }
func (*exportCmd) Usage() string {
	return `tb export [-o <file>]

  Writes every trade of the configured store in the canonical ledger format.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "-", "Output file, - for stdout")
}

func (c *exportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := openStore()
	if err != nil {
		return fail("Error opening store: %v", err)
	}
	defer s.Close()

	trades, err := s.All()
	if err != nil {
		return fail("Error reading trades: %v", err)
	}
	ledger := tradebook.NewLedger()
	for _, t := range trades {
		if _, err := ledger.Add(t); err != nil {
			return fail("Error exporting trade %d: %v", t.ID, err)
		}
	}

	if c.output == "-" {
		err = tradebook.EncodeLedger(stdout, ledger)
	} else {
		err = writeLedger(c.output, ledger)
	}
	if err != nil {
		return fail("Error writing ledger: %v", err)
	}
	return subcommands.ExitSuccess
}
