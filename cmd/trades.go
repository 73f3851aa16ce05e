package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/tradebook"
	"github.com/etnz/tradebook/renderer"
	"github.com/google/subcommands"
)

// --- Add Command ---

type addCmd struct {
	tradeFlags
	id int64
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "record a new stock or option trade" }
func (*addCmd) Usage() string {
	return `tb add -s <symbol> -q <quantity> -p <price> [-d <date>] [-t <type>] [-a <action>] [-strike <strike> -exp <date>] [-fees <fees>] [-m <notes>]

  Records a trade. Options need a strike and an expiration date after the
  trade date. A closed trade also needs -close-date and -close-price.

Usage Examples:
# Buy 10 shares of AAPL.
$ tb add -d 2025-01-15 -s AAPL -q 10 -p 150.25 -fees 1

# Sell a covered call, premium of 2.50 per share.
$ tb add -s AAPL -t call -a sell_to_open -q 1 -p 2.50 -strike 160 -exp 2025-02-21
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	c.tradeFlags.SetFlags(f)
	f.Int64Var(&c.id, "id", 0, "Id of the trade. Defaults to the next free id.")
}

func (c *addCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.symbol == "" || c.quantity == 0 || c.price == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	in := tradebook.TradeInput{ID: c.id}
	if err := c.apply(&in, func(string) bool { return true }); err != nil {
		fmt.Fprintln(stderr, err)
		return subcommands.ExitUsageError
	}

	s, err := openStore()
	if err != nil {
		return fail("Error opening store: %v", err)
	}
	defer s.Close()

	t, err := in.Trade(s.currency(in.Currency))
	if err != nil {
		return fail("Error: %v", err)
	}
	t, err = s.Add(t)
	if err != nil {
		return fail("Error adding trade: %v", err)
	}
	if err := s.Save(); err != nil {
		return fail("Error saving trade: %v", err)
	}
	fmt.Fprintf(stdout, "Added trade %d: %s %d %s\n", t.ID, t.Action.Title(), t.Quantity, t.Symbol)
	return subcommands.ExitSuccess
}

// --- Update Command ---

type updateCmd struct {
	tradeFlags
	id     int64
	reopen bool
}

func (*updateCmd) Name() string     { return "update" }
func (*updateCmd) Synopsis() string { return "change the fields of a trade" }
func (*updateCmd) Usage() string {
	return `tb update -id <id> [trade flags] [-reopen]

  Changes the fields given on the command line, the others are kept. The
  updated trade is validated like a new one.

Usage Examples:
# Close trade 3, bought back at 1.10.
$ tb update -id 3 -close-date 2025-02-10 -close-price 1.10
`
}

func (c *updateCmd) SetFlags(f *flag.FlagSet) {
	c.tradeFlags.SetFlags(f)
	f.Int64Var(&c.id, "id", 0, "Id of the trade to update")
	f.BoolVar(&c.reopen, "reopen", false, "Clear the closing of the trade")
}

func (c *updateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id <= 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	set := map[string]bool{}
	f.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	s, err := openStore()
	if err != nil {
		return fail("Error opening store: %v", err)
	}
	defer s.Close()

	old, err := s.Get(c.id)
	if err != nil {
		return fail("Error: %v", err)
	}
	in := old.Input()
	if c.reopen {
		in.IsClosed = false
		in.CloseQuantity = 0
	}
	if err := c.apply(&in, func(name string) bool { return set[name] }); err != nil {
		fmt.Fprintln(stderr, err)
		return subcommands.ExitUsageError
	}
	t, err := in.Trade(s.currency(in.Currency))
	if err != nil {
		return fail("Error: %v", err)
	}
	t, err = s.Update(t)
	if err != nil {
		return fail("Error updating trade: %v", err)
	}
	if err := s.Save(); err != nil {
		return fail("Error saving trade: %v", err)
	}
	fmt.Fprintf(stdout, "Updated trade %d\n", t.ID)
	return subcommands.ExitSuccess
}

// --- Delete Command ---

type deleteCmd struct {
	id int64
}

func (*deleteCmd) Name() string     { return "delete" }
func (*deleteCmd) Synopsis() string { return "delete a trade" }
func (*deleteCmd) Usage() string {
	return `tb delete -id <id>

  Deletes the trade with the given id.
`
}

func (c *deleteCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.id, "id", 0, "Id of the trade to delete")
}

func (c *deleteCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id <= 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	s, err := openStore()
	if err != nil {
		return fail("Error opening store: %v", err)
	}
	defer s.Close()

	if err := s.Delete(c.id); err != nil {
		return fail("Error: %v", err)
	}
	if err := s.Save(); err != nil {
		return fail("Error saving ledger: %v", err)
	}
	fmt.Fprintf(stdout, "Deleted trade %d\n", c.id)
	return subcommands.ExitSuccess
}

// --- List Command ---

type listCmd struct {
	id         int64
	instrument string
	action     string
	symbol     string
	from       string
	to         string
	head       int
	raw        bool
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list the trades, most recent first" }
func (*listCmd) Usage() string {
	return `tb list [-s <symbol>] [-t <type>] [-a <action>] [-from <date>] [-to <date>] [-head <n>] [-id <id>] [-raw]

  Lists the trades matching the filters, most recent first. With -id, shows
  the details of a single trade.
`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.id, "id", 0, "Show the details of this trade only")
	f.StringVar(&c.instrument, "t", "", "Keep trades of this instrument: stock, call or put")
	f.StringVar(&c.action, "a", "", "Keep trades of this action")
	f.StringVar(&c.symbol, "s", "", "Keep symbols containing this text, ignoring case")
	f.StringVar(&c.from, "from", "", "Keep trades on or after this date")
	f.StringVar(&c.to, "to", "", "Keep trades on or before this date")
	f.IntVar(&c.head, "head", 0, "Show only the first N trades.")
	f.BoolVar(&c.raw, "raw", false, "Print the markdown source instead of rendering it")
}

func (c *listCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	filter, err := tradebook.ParseFilter(c.instrument, c.action, c.symbol, c.from, c.to)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return subcommands.ExitUsageError
	}
	s, err := openStore()
	if err != nil {
		return fail("Error opening store: %v", err)
	}
	defer s.Close()

	if c.id > 0 {
		t, err := s.Get(c.id)
		if err != nil {
			return fail("Error: %v", err)
		}
		printMarkdown(renderer.TradeMarkdown(t, now()), c.raw)
		return subcommands.ExitSuccess
	}

	trades, err := s.List(filter)
	if err != nil {
		return fail("Error listing trades: %v", err)
	}
	if c.head > 0 && len(trades) > c.head {
		trades = trades[:c.head]
	}
	printMarkdown(renderer.TradesMarkdown(trades, now()), c.raw)
	return subcommands.ExitSuccess
}
