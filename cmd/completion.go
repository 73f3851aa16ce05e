package cmd

import (
	"flag"

	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// predictors complete the values of flags, by flag name.
var predictors = map[string]complete.Predictor{
	"t":           predict.Set{"stock", "call", "put"},
	"a":           predict.Set{"buy_to_open", "buy_to_close", "sell_to_open", "sell_to_close"},
	"store":       predict.Set{StoreLedger, StoreSQLite},
	"log-level":   predict.Set{"debug", "info", "warn", "error"},
	"config":      predict.Files("*.yaml"),
	"ledger-file": predict.Files("*.jsonl"),
	"db":          predict.Files("*.db"),
	"o":           predict.Files("*.jsonl"),
}

// Completion describes the tb command line for shell completion: the global
// flags, and the subcommands with their flags.
func Completion() *complete.Command {
	c := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: flagPredictors(flag.CommandLine),
	}
	var names predict.Set
	for _, g := range groups {
		for _, cmd := range g.commands {
			f := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
			cmd.SetFlags(f)
			c.Sub[cmd.Name()] = &complete.Command{Flags: flagPredictors(f)}
			names = append(names, cmd.Name())
		}
	}
	c.Sub["import"].Args = predict.Files("*.jsonl")
	c.Sub["help"] = &complete.Command{Args: names}
	return c
}

func flagPredictors(f *flag.FlagSet) map[string]complete.Predictor {
	m := make(map[string]complete.Predictor)
	f.VisitAll(func(fl *flag.Flag) {
		if p, ok := predictors[fl.Name]; ok {
			m[fl.Name] = p
			return
		}
		if b, ok := fl.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
			m[fl.Name] = predict.Nothing
			return
		}
		m[fl.Name] = predict.Something
	})
	return m
}
