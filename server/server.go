// Package server exposes the dashboard over HTTP and pushes snapshots to
// websocket clients.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/rustyeddy/atb/dashboard"
	"github.com/rustyeddy/atb/internal/logger"
)

const (
	DefaultStreamInterval = 2 * time.Second
	shutdownTimeout       = 5 * time.Second
)

// Server owns the gin engine and the websocket hub for one dashboard.
type Server struct {
	dash     *dashboard.Dashboard
	log      zerolog.Logger
	hub      *Hub
	interval time.Duration
	engine   *gin.Engine
}

type Option func(*Server)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithStreamInterval sets how often snapshots are pushed. Non-positive
// values keep the default.
func WithStreamInterval(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.interval = d
		}
	}
}

func New(d *dashboard.Dashboard, opts ...Option) *Server {
	s := &Server{
		dash:     d,
		log:      logger.Nop(),
		interval: DefaultStreamInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.hub = NewHub(s.log)
	s.engine = s.routes()
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) Hub() *Hub { return s.hub }

// Run serves addr until ctx ends and then shuts down gracefully. The hub
// and the snapshot stream live as long as the server.
func (s *Server) Run(ctx context.Context, addr string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go s.hub.Run(ctx)
	go s.hub.Stream(ctx, s.interval, MessageSnapshot, func() any {
		return s.dash.Snapshot(false)
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("http server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err, ok := <-errc:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info().Msg("http server shutting down")
	sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer scancel()
	return srv.Shutdown(sctx)
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(Recovery(s.log))
	r.Use(RequestID())
	r.Use(Logger(s.log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	r.GET("/ws", s.serveWS)

	api := r.Group("/api")
	{
		api.GET("/snapshot", s.getSnapshot)
		api.GET("/ticker", s.getTicker)
		api.GET("/stats", s.getStats)
		api.GET("/review", s.getReview)
		api.GET("/markets", s.getMarkets)
		api.GET("/chart/:symbol", s.getChart)
		api.GET("/trades", s.getTrades)
		api.GET("/export", s.getExport)

		b := api.Group("/bots")
		{
			b.GET("", s.listBots)
			b.POST("", s.createBot)
			b.POST("/market", s.createBotForMarket)
			b.GET("/:id", s.getBot)
			b.PATCH("/:id", s.reconfigureBot)
			b.DELETE("/:id", s.deleteBot)
			b.GET("/:id/trades", s.getBotTrades)
			b.GET("/:id/chart", s.getBotChart)
			b.POST("/:id/start", s.startBot)
			b.POST("/:id/pause", s.pauseBot)
			b.POST("/:id/reset", s.resetBot)
		}

		l := api.Group("/ledger")
		{
			l.GET("", s.getLedger)
			l.POST("/deposit", s.deposit)
			l.POST("/transfer", s.transfer)
			l.POST("/withdraw", s.withdraw)
		}

		v := api.Group("/view")
		{
			v.GET("", s.getView)
			v.PUT("/timeframe", s.setTimeframe)
			v.PUT("/zoom", s.setZoom)
			v.PUT("/filter", s.setFilter)
			v.PUT("/bot", s.selectBot)
		}
	}
	return r
}

func (s *Server) serveWS(c *gin.Context) {
	s.hub.ServeWS(c, &Message{Type: MessageSnapshot, Payload: s.dash.Snapshot(false)})
}
