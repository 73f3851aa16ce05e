package tradebook

import (
	"bufio"
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// DecodeLedger reads trades from a stream of JSONL data, one trade per line,
// and returns them in a Ledger. Empty lines are skipped. Ids found in the
// stream are kept.
func DecodeLedger(r io.Reader) (*Ledger, error) {
	ledger := NewLedger()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		lineBytes := bytes.TrimSpace(scanner.Bytes())
		if len(lineBytes) == 0 {
			continue
		}
		var t Trade
		if err := json.Unmarshal(lineBytes, &t); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if _, err := ledger.Add(t); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading from input: %w", err)
	}
	return ledger, nil
}

// EncodeTrade marshals a single trade to JSON and writes it to the writer,
// followed by a newline, in JSONL format.
func EncodeTrade(w io.Writer, t Trade) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal trade %d: %w", t.ID, err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write trade %d: %w", t.ID, err)
	}
	return nil
}

// EncodeLedger writes all trades of the ledger to w in JSONL format, in
// chronological order. Trades on the same day are ordered by id.
func EncodeLedger(w io.Writer, ledger *Ledger) error {
	trades := ledger.Snapshot()
	slices.SortStableFunc(trades, func(a, b Trade) int {
		switch {
		case a.Date.Before(b.Date):
			return -1
		case a.Date.After(b.Date):
			return 1
		}
		return cmp.Compare(a.ID, b.ID)
	})
	for _, t := range trades {
		if err := EncodeTrade(w, t); err != nil {
			return err
		}
	}
	return nil
}
