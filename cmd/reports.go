package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/tradebook"
	"github.com/etnz/tradebook/agent"
	"github.com/etnz/tradebook/renderer"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

// --- Stats Command ---

type statsCmd struct {
	json  bool
	query string
	raw   bool
}

func (*statsCmd) Name() string     { return "stats" }
func (*statsCmd) Synopsis() string { return "display the portfolio statistics" }
func (*statsCmd) Usage() string {
	return `tb stats [-json] [-q <jsonpath>] [-raw]

  Displays the portfolio summary: counts, realized P&L, fees, cash flows,
  premiums, positions and the best and worst symbols by net cash flow.

Usage Examples:
# Net P&L amount only.
$ tb stats -q '$.netPnl.amount'
`
}

func (c *statsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "Print the statistics as JSON")
	f.StringVar(&c.query, "q", "", "Print the value at this JSONPath of the JSON statistics")
	f.BoolVar(&c.raw, "raw", false, "Print the markdown source instead of rendering it")
}

func (c *statsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := openStore()
	if err != nil {
		return fail("Error opening store: %v", err)
	}
	defer s.Close()

	trades, err := s.All()
	if err != nil {
		return fail("Error reading trades: %v", err)
	}
	stats := tradebook.NewStats(trades, now())

	switch {
	case c.query != "":
		out, err := queryJSON(stats, c.query)
		if err != nil {
			return fail("Error: %v", err)
		}
		fmt.Fprintln(stdout, out)
	case c.json:
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fail("Error encoding stats: %v", err)
		}
		fmt.Fprintln(stdout, string(data))
	default:
		printMarkdown(renderer.StatsMarkdown(stats), c.raw)
	}
	return subcommands.ExitSuccess
}

// queryJSON returns the value at the JSONPath path of v marshalled to JSON.
// Strings are returned as is, other values JSON encoded.
func queryJSON(v any, path string) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	var jobj any
	if err := json.Unmarshal(data, &jobj); err != nil {
		return "", err
	}
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return "", fmt.Errorf("error evaluating %q: %w", path, err)
	}
	// jsonpath returns a list for filters and wildcards, keep a single answer
	// unwrapped.
	if jlist, ok := jval.([]any); ok && len(jlist) == 1 {
		jval = jlist[0]
	}
	if s, ok := jval.(string); ok {
		return s, nil
	}
	out, err := json.Marshal(jval)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// --- Positions Command ---

type positionsCmd struct {
	raw bool
}

func (*positionsCmd) Name() string     { return "positions" }
func (*positionsCmd) Synopsis() string { return "display the trades grouped by symbol" }
func (*positionsCmd) Usage() string {
	return `tb positions [-raw]

  Groups the trades by symbol, showing the cost of the buys, the proceeds of
  the sells and the net cash flow of each symbol.
`
}

func (c *positionsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.raw, "raw", false, "Print the markdown source instead of rendering it")
}

func (c *positionsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := openStore()
	if err != nil {
		return fail("Error opening store: %v", err)
	}
	defer s.Close()

	trades, err := s.All()
	if err != nil {
		return fail("Error reading trades: %v", err)
	}
	printMarkdown(renderer.GroupsMarkdown(tradebook.GroupBySymbol(trades)), c.raw)
	return subcommands.ExitSuccess
}

// --- Assist Command ---

type assistCmd struct {
	model string
	raw   bool
}

func (*assistCmd) Name() string { return "assist" }
func (*assistCmd) Synopsis() string {
	return "ask the AI assistant about the trade book"
}
func (*assistCmd) Usage() string {
	return `tb assist [-model <model>] [<question>...]

  Starts an interactive session with the AI assistant. The assistant reads
  the trade book to answer. A question given on the command line is asked
  first. Requires GEMINI_API_KEY.
`
}

func (c *assistCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.model, "model", "", "Gemini model. Overrides the configuration.")
	f.BoolVar(&c.raw, "raw", false, "Print the answers without rendering them")
}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	initialPrompt := strings.Join(f.Args(), " ")

	s, err := openStore()
	if err != nil {
		return fail("Error opening store: %v", err)
	}
	defer s.Close()

	if s.cfg.Assist.APIKey == "" {
		return fail("Error: %s is not set", EnvGeminiKey)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  s.cfg.Assist.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return fail("Error initializing Gemini's client: %v", err)
	}

	model := c.model
	if model == "" {
		model = s.cfg.Assist.Model
	}
	analyst := agent.NewAnalyst(model, s, now, s.log)
	a := agent.New(stdout, os.Stdin, analyst)
	a.Print = func(_ io.Writer, answer string) { printMarkdown(answer, c.raw) }

	if err := a.Run(ctx, client, initialPrompt); err != nil {
		return fail("Agent failed: %v", err)
	}
	return subcommands.ExitSuccess
}
