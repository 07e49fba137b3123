package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/atb/bots"
	"github.com/rustyeddy/atb/ledger"
	"github.com/rustyeddy/atb/review"
)

type marketBotRequest struct {
	Symbol string `json:"symbol" binding:"required"`
}

// amountRequest accepts the amount as a JSON number or a decimal string.
// Amount stays raw so malformed values surface as invalid amounts rather
// than binding failures.
type amountRequest struct {
	BotID  string          `json:"bot_id"`
	Amount json.RawMessage `json:"amount"`
}

// amount parses the raw amount. A missing or null amount reads as zero,
// which the ledger rejects.
func (r amountRequest) amount() (decimal.Decimal, error) {
	raw := bytes.TrimSpace(r.Amount)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero, nil
	}
	str := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &str); err != nil {
			return decimal.Zero, fmt.Errorf("%w: %s", ledger.ErrInvalidAmount, raw)
		}
	}
	d, err := decimal.NewFromString(str)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ledger.ErrInvalidAmount, str)
	}
	return d, nil
}

type timeframeRequest struct {
	Timeframe string `json:"timeframe" binding:"required"`
}

type zoomRequest struct {
	Zoom float64 `json:"zoom"`
}

type filterRequest struct {
	Filter string `json:"filter"`
}

type selectBotRequest struct {
	BotID string `json:"bot_id"`
}

type lifecycleResponse struct {
	Bot     bots.Bot `json:"bot"`
	Changed bool     `json:"changed"`
}

type ledgerResponse struct {
	Balances ledger.Balances `json:"balances"`
	Entries  []ledger.Entry  `json:"entries"`
}

func (s *Server) getSnapshot(c *gin.Context) {
	series, _ := strconv.ParseBool(c.Query("series"))
	sendSuccess(c, s.dash.Snapshot(series))
}

func (s *Server) getTicker(c *gin.Context) { sendSuccess(c, s.dash.Ticker()) }

func (s *Server) getStats(c *gin.Context) { sendSuccess(c, s.dash.Stats()) }

// getReview uses ?filter= when given and the view filter otherwise.
func (s *Server) getReview(c *gin.Context) {
	if f := c.Query("filter"); f != "" {
		sendSuccess(c, s.dash.ReviewWith(review.ParseFilter(f)))
		return
	}
	sendSuccess(c, s.dash.Review())
}

func (s *Server) getMarkets(c *gin.Context) {
	sendSuccess(c, s.dash.Markets(c.Query("search")))
}

func (s *Server) getChart(c *gin.Context) {
	chart, err := s.dash.Chart(c.Param("symbol"))
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, chart)
}

func (s *Server) getTrades(c *gin.Context) {
	trades, err := s.dash.Trades("")
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, trades)
}

// getExport streams the full state as json (default) or yaml.
func (s *Server) getExport(c *gin.Context) {
	format := c.DefaultQuery("format", "json")
	var buf bytes.Buffer
	if err := s.dash.Export(&buf, format); err != nil {
		sendError(c, err)
		return
	}
	contentType := "application/json"
	if format == "yaml" || format == "yml" {
		contentType = "application/yaml"
	}
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func (s *Server) listBots(c *gin.Context) { sendSuccess(c, s.dash.Bots()) }

func (s *Server) getBot(c *gin.Context) {
	b, err := s.dash.Bot(c.Param("id"))
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, b)
}

func (s *Server) createBot(c *gin.Context) {
	var req bots.Config
	if err := c.ShouldBindJSON(&req); err != nil {
		sendValidationError(c, err)
		return
	}
	b, err := s.dash.CreateBot(req)
	if err != nil {
		sendError(c, err)
		return
	}
	sendCreated(c, b, "Bot created")
}

func (s *Server) createBotForMarket(c *gin.Context) {
	var req marketBotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendValidationError(c, err)
		return
	}
	b, err := s.dash.CreateBotForMarket(req.Symbol)
	if err != nil {
		sendError(c, err)
		return
	}
	sendCreated(c, b, "Bot created")
}

func (s *Server) reconfigureBot(c *gin.Context) {
	var req bots.Update
	if err := c.ShouldBindJSON(&req); err != nil {
		sendValidationError(c, err)
		return
	}
	b, err := s.dash.ReconfigureBot(c.Param("id"), req)
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, b)
}

func (s *Server) deleteBot(c *gin.Context) {
	if err := s.dash.DeleteBot(c.Param("id")); err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Message: "Bot deleted"})
}

func (s *Server) getBotTrades(c *gin.Context) {
	trades, err := s.dash.Trades(c.Param("id"))
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, trades)
}

func (s *Server) getBotChart(c *gin.Context) {
	chart, err := s.dash.BotChart(c.Param("id"))
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, chart)
}

func (s *Server) startBot(c *gin.Context) {
	s.lifecycle(c, s.dash.StartBot)
}

func (s *Server) pauseBot(c *gin.Context) {
	s.lifecycle(c, s.dash.PauseBot)
}

func (s *Server) lifecycle(c *gin.Context, op func(string) (bool, error)) {
	id := c.Param("id")
	changed, err := op(id)
	if err != nil {
		sendError(c, err)
		return
	}
	b, err := s.dash.Bot(id)
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, lifecycleResponse{Bot: b, Changed: changed})
}

func (s *Server) resetBot(c *gin.Context) {
	b, err := s.dash.ResetBot(c.Param("id"))
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, b)
}

func (s *Server) getLedger(c *gin.Context) {
	sendSuccess(c, ledgerResponse{
		Balances: s.dash.Balances(),
		Entries:  s.dash.LedgerEntries(),
	})
}

func (s *Server) deposit(c *gin.Context) {
	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendValidationError(c, err)
		return
	}
	amount, err := req.amount()
	if err != nil {
		sendError(c, err)
		return
	}
	s.sendEntry(c)(s.dash.Deposit(amount))
}

func (s *Server) transfer(c *gin.Context) {
	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendValidationError(c, err)
		return
	}
	amount, err := req.amount()
	if err != nil {
		sendError(c, err)
		return
	}
	s.sendEntry(c)(s.dash.TransferToBot(req.BotID, amount))
}

func (s *Server) withdraw(c *gin.Context) {
	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendValidationError(c, err)
		return
	}
	amount, err := req.amount()
	if err != nil {
		sendError(c, err)
		return
	}
	s.sendEntry(c)(s.dash.WithdrawFromBot(req.BotID, amount))
}

// sendEntry replies with the new entry and the balances it produced.
func (s *Server) sendEntry(c *gin.Context) func(ledger.Entry, error) {
	return func(e ledger.Entry, err error) {
		if err != nil {
			sendError(c, err)
			return
		}
		sendSuccess(c, gin.H{"entry": e, "balances": s.dash.Balances()})
	}
}

func (s *Server) getView(c *gin.Context) { sendSuccess(c, s.dash.View()) }

func (s *Server) setTimeframe(c *gin.Context) {
	var req timeframeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendValidationError(c, err)
		return
	}
	if _, err := s.dash.SetTimeframe(req.Timeframe); err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, s.dash.View())
}

func (s *Server) setZoom(c *gin.Context) {
	var req zoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendValidationError(c, err)
		return
	}
	s.dash.SetZoom(req.Zoom)
	sendSuccess(c, s.dash.View())
}

func (s *Server) setFilter(c *gin.Context) {
	var req filterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendValidationError(c, err)
		return
	}
	s.dash.SetMarketFilter(req.Filter)
	sendSuccess(c, s.dash.View())
}

func (s *Server) selectBot(c *gin.Context) {
	var req selectBotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendValidationError(c, err)
		return
	}
	if err := s.dash.SelectBot(req.BotID); err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, s.dash.View())
}
