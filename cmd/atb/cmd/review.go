package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/atb/dashboard"
	"github.com/rustyeddy/atb/review"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Print the market review",
	Long: `Bootstrap the market data, optionally let it tick on a virtual clock,
and print the biggest gainer, biggest loser, most volatile market and
the per-symbol performance list.

Examples:
  atb review --filter crypto --warmup 10m`,
	RunE: runReview,
}

var (
	reviewFilter string
	reviewWarmup time.Duration
)

func init() {
	rootCmd.AddCommand(reviewCmd)

	reviewCmd.Flags().StringVar(&reviewFilter, "filter", "all", "all, stocks, crypto, commodities or a symbol")
	reviewCmd.Flags().DurationVar(&reviewWarmup, "warmup", 0, "virtual time to simulate before reviewing")
}

func runReview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	clk := &virtualClock{t: time.Now().UTC()}
	d, _, err := openDashboard(context.Background(), cfg, dashboard.WithClock(clk.Now))
	if err != nil {
		return err
	}
	defer d.Close()

	if reviewWarmup > 0 {
		simulate(d, clk, reviewWarmup, time.Second)
	}

	r := d.ReviewWith(review.ParseFilter(reviewFilter))
	fmt.Printf("Market review (%s): %d markets\n", r.Filter, r.TotalMarkets)
	fmt.Printf("  Biggest gainer: %s\n", mover(r.BiggestGainer))
	fmt.Printf("  Biggest loser:  %s\n", mover(r.BiggestLoser))
	fmt.Printf("  Most volatile:  %s\n\n", mover(r.MostVolatile))

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tCHANGE")
	for _, p := range r.Performance {
		fmt.Fprintf(tw, "%s\t%+.2f%%\n", p.Symbol, p.Change)
	}
	return tw.Flush()
}

func mover(m review.Mover) string {
	if !m.Found() {
		return review.NoData
	}
	return fmt.Sprintf("%s (%+.2f%%)", m.Symbol, m.Percent)
}
