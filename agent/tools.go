package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/etnz/tradebook"
	"github.com/etnz/tradebook/renderer"
	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// NewAnalyst creates the expert in charge of the user's trade book, reading it
// from repo. Expiration status is evaluated at now().
func NewAnalyst(model string, repo tradebook.Repository, now func() time.Time, log zerolog.Logger) *Expert {
	if model == "" {
		model = DefaultModel
	}
	tools := Tools(repo, now)
	return &Expert{
		Name:        "Analyst",
		Description: "The analyst reads the user's trade book and computes figures about it.",
		ModelName:   model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(tools)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
				You are an analyst in charge of the user's trade book, a journal of stock
				and option trades. Use the Tools to read the trades, their statistics and
				the positions by symbol before answering. Amounts are in the currency of
				the book. A positive net cash flow means more was received than paid.
				Answer in markdown, be concise and quote the figures you rely on.
			`}}},
		},
		Library: NewLibrary(tools),
		Log:     log,
	}
}

// Tools returns the functions reading repo.
func Tools(repo tradebook.Repository, now func() time.Time) []Function {
	return []Function{
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "stats",
				Description: "Returns the portfolio summary: trade counts, realized P&L, fees, invested and proceeds totals, premiums, stock and option positions, and the best and worst symbols by net cash flow.",
				Response:    &genai.Schema{Type: genai.TypeString, Description: "A markdown report."},
			},
			Func: func(ctx context.Context, args map[string]any) (string, error) {
				trades, err := repo.All()
				if err != nil {
					return "", err
				}
				return renderer.StatsMarkdown(tradebook.NewStats(trades, now())), nil
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "list_trades",
				Description: "Lists the trades matching the given criteria, most recent first. All criteria are optional.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"type":   {Type: genai.TypeString, Description: "The instrument: stock, call or put."},
						"action": {Type: genai.TypeString, Description: "One of buy_to_open, buy_to_close, sell_to_open, sell_to_close."},
						"symbol": {Type: genai.TypeString, Description: "Keeps symbols containing this text, ignoring case."},
						"from":   {Type: genai.TypeString, Description: "First trade date included, as YYYY-MM-DD."},
						"to":     {Type: genai.TypeString, Description: "Last trade date included, as YYYY-MM-DD."},
					},
				},
				Response: &genai.Schema{Type: genai.TypeString, Description: "A markdown table of trades."},
			},
			Func: func(ctx context.Context, args map[string]any) (string, error) {
				var s [5]string
				for i, name := range []string{"type", "action", "symbol", "from", "to"} {
					v, err := stringArg(args, name)
					if err != nil {
						return "", err
					}
					s[i] = v
				}
				f, err := tradebook.ParseFilter(s[0], s[1], s[2], s[3], s[4])
				if err != nil {
					return "", err
				}
				trades, err := repo.List(f)
				if err != nil {
					return "", err
				}
				return renderer.TradesMarkdown(trades, now()), nil
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "get_trade",
				Description: "Returns the details of a single trade.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"id": {Type: genai.TypeInteger, Description: "The id of the trade."},
					},
					Required: []string{"id"},
				},
				Response: &genai.Schema{Type: genai.TypeString, Description: "A markdown table of the trade fields."},
			},
			Func: func(ctx context.Context, args map[string]any) (string, error) {
				id, err := intArg(args, "id")
				if err != nil {
					return "", err
				}
				t, err := repo.Get(id)
				if err != nil {
					return "", err
				}
				return renderer.TradeMarkdown(t, now()), nil
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "positions",
				Description: "Groups the trades by symbol with the cost of the buys, the proceeds of the sells and the net cash flow of each symbol.",
				Response:    &genai.Schema{Type: genai.TypeString, Description: "A markdown report."},
			},
			Func: func(ctx context.Context, args map[string]any) (string, error) {
				trades, err := repo.All()
				if err != nil {
					return "", err
				}
				return renderer.GroupsMarkdown(tradebook.GroupBySymbol(trades)), nil
			},
		},
	}
}

// stringArg returns the string argument name, "" if it is missing.
func stringArg(args map[string]any, name string) (string, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q is not a string as expected but %T", name, v)
	}
	return s, nil
}

// intArg returns the required integer argument name. JSON numbers arrive as
// float64.
func intArg(args map[string]any, name string) (int64, error) {
	switch v := args[name].(type) {
	case nil:
		return 0, fmt.Errorf("argument %q is required", name)
	case float64:
		if v != float64(int64(v)) {
			return 0, fmt.Errorf("argument %q must be an integer, got %v", name, v)
		}
		return int64(v), nil
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	default:
		return 0, fmt.Errorf("argument %q is not a number as expected but %T", name, v)
	}
}
