package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/atb/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the SQLite journal",
	Long: `Query trade and ledger records written by a sqlite journal.

Subcommands:
  trade  - Show one trade by ID
  bot    - List the trades of one bot
  ledger - List ledger movements on a day (UTC)

Examples:
  atb journal trade trd_01HZ...
  atb journal bot bot1
  atb journal ledger 2024-01-15`,
}

var journalTradeCmd = &cobra.Command{
	Use:   "trade <trade-id>",
	Short: "Show one trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTrade,
}

var journalBotCmd = &cobra.Command{
	Use:   "bot <bot-id>",
	Short: "List the trades of a bot",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalBot,
}

var journalLedgerCmd = &cobra.Command{
	Use:   "ledger <YYYY-MM-DD>",
	Short: "List ledger movements on a day",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalLedger,
}

var journalDBPath string

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalTradeCmd)
	journalCmd.AddCommand(journalBotCmd)
	journalCmd.AddCommand(journalLedgerCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./atb.sqlite", "path to SQLite journal DB")
}

func runJournalTrade(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	rec, err := j.GetTrade(args[0])
	if err != nil {
		return fmt.Errorf("get trade: %w", err)
	}
	return writeTrades(os.Stdout, []journal.TradeRecord{rec})
}

func runJournalBot(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	recs, err := j.ListTradesByBot(args[0])
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}
	return writeTrades(os.Stdout, recs)
}

func runJournalLedger(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	start, end, err := dayBounds(time.UTC, args[0])
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}
	recs, err := j.ListLedgerBetween(start, end)
	if err != nil {
		return fmt.Errorf("query ledger: %w", err)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tTIME\tKIND\tBOT\tAMOUNT\tMAIN\tAVAILABLE")
	for _, r := range recs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Seq, r.Time.Format(time.RFC3339), r.Kind, r.BotID,
			r.Amount.String(), r.Main.String(), r.Available.String())
	}
	return tw.Flush()
}

func writeTrades(w io.Writer, recs []journal.TradeRecord) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIME\tBOT\tSYMBOL\tSIDE\tQTY\tPRICE")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%.4f\n",
			r.TradeID, r.Time.Format(time.RFC3339), r.BotID, r.Symbol, r.Side, r.Quantity, r.Price)
	}
	return tw.Flush()
}

func dayBounds(loc *time.Location, day string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	return start, start.Add(24 * time.Hour), nil
}
