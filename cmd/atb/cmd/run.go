package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/atb/dashboard"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the simulation headless",
	Long: `Run the market, bots, ledger and statistics without any HTTP surface.

With --virtual the clock is simulated and --for of market time elapses
as fast as possible. Otherwise the driver runs in real time until --for
elapses or the process is interrupted.

Examples:
  atb run --start-all --for 1h --virtual
  atb run -c atb.yaml`,
	RunE: runRun,
}

var (
	runFor        time.Duration
	runResolution time.Duration
	runVirtual    bool
	runStartAll   bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().DurationVar(&runFor, "for", 0, "how long to run (0 runs until interrupted)")
	runCmd.Flags().DurationVar(&runResolution, "resolution", time.Second, "driver step")
	runCmd.Flags().BoolVar(&runVirtual, "virtual", false, "simulate the clock instead of waiting")
	runCmd.Flags().BoolVar(&runStartAll, "start-all", false, "start every configured bot")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if runVirtual && runFor <= 0 {
		return fmt.Errorf("--virtual needs a positive --for")
	}
	if runResolution <= 0 {
		return fmt.Errorf("--resolution must be positive")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []dashboard.Option
	clk := &virtualClock{t: time.Now().UTC()}
	if runVirtual {
		opts = append(opts, dashboard.WithClock(clk.Now))
	}

	d, log, err := openDashboard(ctx, cfg, opts...)
	if err != nil {
		return err
	}
	defer d.Close()

	if runStartAll {
		if err := startAll(d); err != nil {
			return err
		}
	}

	if runVirtual {
		n := simulate(d, clk, runFor, runResolution)
		log.Info().Int("trades", n).Dur("span", runFor).Msg("virtual run finished")
	} else {
		if runFor > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, runFor)
			defer cancel()
		}
		if err := d.Run(ctx, runResolution); err != nil {
			return err
		}
	}

	printSummary(d)
	return nil
}

func printSummary(d *dashboard.Dashboard) {
	st := d.Stats()
	bal := d.Balances()
	trades, _ := d.Trades("")

	fmt.Printf("\nFinal Results:\n")
	fmt.Printf("  Bots: %d (%d active)\n", len(d.Bots()), st.ActivePositions)
	fmt.Printf("  Trades executed: %d (%d buys, %d sells)\n", st.Executions, st.Buys, st.Sells)
	fmt.Printf("  Retained trades: %d\n", len(trades))
	fmt.Printf("  Total P&L: %.2f  Daily P&L: %.2f  Win rate: %.1f%%\n", st.TotalPnL, st.DailyPnL, st.WinRate)
	fmt.Printf("  Balance: %s  Available: %s  Allocated: %s\n",
		bal.Main.StringFixed(2), bal.Available.StringFixed(2), bal.Allocated.StringFixed(2))
}
