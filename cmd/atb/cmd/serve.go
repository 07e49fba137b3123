package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/atb/dashboard"
	"github.com/rustyeddy/atb/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard over HTTP",
	Long: `Run the simulation in real time and expose it over HTTP.

Commands and reads live under /api, snapshots are pushed to websocket
clients on /ws every server.stream_interval.

Example:
  ATB_ADDR=:9090 atb serve`,
	RunE: runServe,
}

var (
	serveAddr       string
	serveResolution time.Duration
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().DurationVar(&serveResolution, "resolution", time.Second, "driver step")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, log, err := openDashboard(ctx, cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	srv := server.New(d,
		server.WithLogger(log),
		server.WithStreamInterval(cfg.Server.StreamInterval.D()),
	)
	return runDriven(ctx, d, serveResolution, log, func(ctx context.Context) error {
		return srv.Run(ctx, cfg.Server.Addr)
	})
}

// runDriven runs serve alongside the dashboard driver. It returns once
// both have stopped, so the caller may close the dashboard safely.
func runDriven(ctx context.Context, d *dashboard.Dashboard, resolution time.Duration, log zerolog.Logger, serve func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := d.Run(ctx, resolution); err != nil {
			log.Error().Err(err).Msg("driver")
		}
	}()

	err := serve(ctx)
	cancel()
	<-done
	return err
}
