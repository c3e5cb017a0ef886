// Command settle computes balances and a settlement plan for a ledger stored as JSON, without a
// database. The input is the settlement.Ledger document: {"event_id", "members", "expenses"}.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/splitwallet-backend/internal/settlement"
	"github.com/angelmondragon/splitwallet-backend/pkg/enums"
	"github.com/angelmondragon/splitwallet-backend/pkg/logger"
	"github.com/angelmondragon/splitwallet-backend/pkg/money"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "settle", Format: "console", Output: os.Stderr})
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		logg.Error(context.Background(), "settle failed", err)
		os.Exit(1)
	}
}

type options struct {
	file         string
	policy       enums.RemainderPolicy
	tolerance    decimal.Decimal
	approvedOnly bool
	format       string
}

func parseFlags(args []string) (options, error) {
	fs := flag.NewFlagSet("settle", flag.ContinueOnError)
	file := fs.String("file", "-", "ledger JSON file, - for stdin")
	policy := fs.String("policy", string(enums.RemainderPolicyMemberOrder), "remainder policy: member_order|payer")
	tolerance := fs.String("tolerance", settlement.DefaultTolerance.String(), "largest accepted imbalance")
	approvedOnly := fs.Bool("approved-only", false, "ignore expenses that are not approved")
	format := fs.String("format", "text", "output format: text|json")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	opts := options{file: *file, approvedOnly: *approvedOnly, format: *format}
	var err error
	if opts.policy, err = enums.ParseRemainderPolicy(*policy); err != nil {
		return options{}, err
	}
	if opts.tolerance, err = decimal.NewFromString(*tolerance); err != nil || opts.tolerance.IsNegative() {
		return options{}, fmt.Errorf("invalid tolerance %q", *tolerance)
	}
	if opts.format != "text" && opts.format != "json" {
		return options{}, fmt.Errorf("unknown format %q", opts.format)
	}
	return opts, nil
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	in := stdin
	if opts.file != "-" {
		f, err := os.Open(opts.file)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	var ledger settlement.Ledger
	if err := json.NewDecoder(in).Decode(&ledger); err != nil {
		return fmt.Errorf("decode ledger: %w", err)
	}
	if opts.approvedOnly {
		ledger = ledger.Filter(settlement.ApprovedOnly)
	}

	result, err := settlement.NewEngine(opts.policy, opts.tolerance).Settle(ledger)
	if err != nil {
		return err
	}

	if opts.format == "json" {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return writeText(stdout, result)
}

func writeText(out io.Writer, result *settlement.Result) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "member\tpaid\tshare\tnet\t\n")
	for _, m := range result.Sheet.Members {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", m.Name,
			m.Paid.StringFixed(money.Places), m.Share.StringFixed(money.Places), m.Net.StringFixed(money.Places))
	}
	fmt.Fprintf(tw, "total\t%s\t\t\t\n", result.Sheet.Total.StringFixed(money.Places))
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out)
	if len(result.Transactions) == 0 {
		_, err := fmt.Fprintln(out, "all settled")
		return err
	}
	for _, txn := range result.Transactions {
		if _, err := fmt.Fprintf(out, "%s pays %s %s\n", txn.PayerName, txn.PayeeName, txn.Amount.StringFixed(money.Places)); err != nil {
			return err
		}
	}
	return nil
}
