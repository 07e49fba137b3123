package server

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/atb/bots"
	"github.com/rustyeddy/atb/config"
	"github.com/rustyeddy/atb/dashboard"
	"github.com/rustyeddy/atb/internal/logger"
	"github.com/rustyeddy/atb/ledger"
)

var t0 = time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *ErrorInfo      `json:"error"`
	Message string          `json:"message"`
}

func newServer(t *testing.T) *Server {
	t.Helper()
	d, err := dashboard.New(config.Default(),
		dashboard.WithClock(func() time.Time { return t0 }),
		dashboard.WithRand(rand.New(rand.NewPCG(7, 11))),
	)
	require.NoError(t, err)
	require.NoError(t, d.Bootstrap(context.Background()))
	return New(d, WithLogger(logger.Nop()))
}

func do(t *testing.T, s *Server, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func TestHealthAndRequestID(t *testing.T) {
	s := newServer(t)

	w, _ := do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestListAndGetBots(t *testing.T) {
	s := newServer(t)

	w, env := do(t, s, http.MethodGet, "/api/bots", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, env.Success)
	var list []bots.Bot
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 7)

	w, env = do(t, s, http.MethodGet, "/api/bots/bot6", "")
	require.Equal(t, http.StatusOK, w.Code)
	var b bots.Bot
	require.NoError(t, json.Unmarshal(env.Data, &b))
	assert.Equal(t, "BTC", b.Asset)

	w, env = do(t, s, http.MethodGet, "/api/bots/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, dashboard.CodeNotFound, env.Error.Code)
}

func TestCreateBot(t *testing.T) {
	s := newServer(t)

	w, env := do(t, s, http.MethodPost, "/api/bots", `{"name":"Alpha","asset":"ETH","risk":"high"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var b bots.Bot
	require.NoError(t, json.Unmarshal(env.Data, &b))
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, bots.RiskHigh, b.Risk)
	assert.Equal(t, bots.Inactive, b.State)

	w, env = do(t, s, http.MethodPost, "/api/bots", `{"name":"NoAsset"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dashboard.CodeInvalidArgument, env.Error.Code)

	w, env = do(t, s, http.MethodPost, "/api/bots", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, CodeValidation, env.Error.Code)

	w, env = do(t, s, http.MethodPost, "/api/bots/market", `{"symbol":"GC=F"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &b))
	assert.Equal(t, "Gold Futures Bot", b.Name)

	w, _ = do(t, s, http.MethodPost, "/api/bots/market", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBotLifecycle(t *testing.T) {
	s := newServer(t)

	var got lifecycleResponse
	w, env := do(t, s, http.MethodPost, "/api/bots/bot1/start", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.True(t, got.Changed)
	assert.Equal(t, bots.Active, got.Bot.State)

	_, env = do(t, s, http.MethodPost, "/api/bots/bot1/start", "")
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.False(t, got.Changed)

	_, env = do(t, s, http.MethodPost, "/api/bots/bot1/pause", "")
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.True(t, got.Changed)
	assert.Equal(t, bots.Inactive, got.Bot.State)

	w, env = do(t, s, http.MethodPatch, "/api/bots/bot1", `{"name":"Renamed","max_positions":2.5}`)
	require.Equal(t, http.StatusOK, w.Code)
	var b bots.Bot
	require.NoError(t, json.Unmarshal(env.Data, &b))
	assert.Equal(t, "Renamed", b.Name)
	assert.Equal(t, 2.5, b.MaxPositions)

	w, _ = do(t, s, http.MethodPost, "/api/bots/bot1/reset", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, s, http.MethodGet, "/api/bots/bot1/chart", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, s, http.MethodDelete, "/api/bots/bot1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = do(t, s, http.MethodGet, "/api/bots/bot1/trades", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = do(t, s, http.MethodPost, "/api/bots/bot1/start", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLedgerEndpoints(t *testing.T) {
	s := newServer(t)

	w, _ := do(t, s, http.MethodPost, "/api/ledger/deposit", `{"amount":"500"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env := do(t, s, http.MethodPost, "/api/ledger/transfer", `{"bot_id":"bot1","amount":250.5}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env = do(t, s, http.MethodGet, "/api/ledger", "")
	require.Equal(t, http.StatusOK, w.Code)
	var lr ledgerResponse
	require.NoError(t, json.Unmarshal(env.Data, &lr))
	assert.True(t, lr.Balances.Main.Equal(decimal.RequireFromString("100500")))
	assert.True(t, lr.Balances.Available.Equal(decimal.RequireFromString("100249.5")))
	assert.True(t, lr.Balances.Allocations["bot1"].Equal(decimal.RequireFromString("250.5")))
	require.Len(t, lr.Entries, 3)
	assert.Equal(t, ledger.KindTransfer, lr.Entries[2].Kind)

	cases := []struct {
		path, body string
		status     int
		code       string
	}{
		{"/api/ledger/transfer", `{"bot_id":"bot1","amount":"1000000"}`, http.StatusConflict, dashboard.CodeInsufficientFunds},
		{"/api/ledger/withdraw", `{"bot_id":"bot1","amount":"1000"}`, http.StatusConflict, dashboard.CodeInsufficientAllocation},
		{"/api/ledger/withdraw", `{"bot_id":"nope","amount":"1"}`, http.StatusNotFound, dashboard.CodeNotFound},
		{"/api/ledger/deposit", `{"amount":"-5"}`, http.StatusBadRequest, dashboard.CodeInvalidAmount},
		{"/api/ledger/deposit", `{}`, http.StatusBadRequest, dashboard.CodeInvalidAmount},
		{"/api/ledger/deposit", `{"amount":null}`, http.StatusBadRequest, dashboard.CodeInvalidAmount},
		{"/api/ledger/deposit", `{"amount":"abc"}`, http.StatusBadRequest, dashboard.CodeInvalidAmount},
		{"/api/ledger/deposit", `{"amount":true}`, http.StatusBadRequest, dashboard.CodeInvalidAmount},
		{"/api/ledger/transfer", `{"bot_id":"bot1","amount":"1,5"}`, http.StatusBadRequest, dashboard.CodeInvalidAmount},
		{"/api/ledger/deposit", `{"amount":`, http.StatusBadRequest, CodeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.path+" "+tc.body, func(t *testing.T) {
			w, env := do(t, s, http.MethodPost, tc.path, tc.body)
			assert.Equal(t, tc.status, w.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, tc.code, env.Error.Code)
		})
	}

	w, _ = do(t, s, http.MethodPost, "/api/ledger/withdraw", `{"bot_id":"bot1","amount":"250.5"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, s.dash.Balances().Allocated.IsZero())
}

func TestViewEndpoints(t *testing.T) {
	s := newServer(t)

	w, env := do(t, s, http.MethodPut, "/api/view/timeframe", `{"timeframe":"1h"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var v dashboard.View
	require.NoError(t, json.Unmarshal(env.Data, &v))
	assert.EqualValues(t, "1h", v.Timeframe)

	w, env = do(t, s, http.MethodPut, "/api/view/timeframe", `{"timeframe":"2h"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dashboard.CodeInvalidArgument, env.Error.Code)

	_, env = do(t, s, http.MethodPut, "/api/view/zoom", `{"zoom":0}`)
	require.NoError(t, json.Unmarshal(env.Data, &v))
	assert.InDelta(t, 0.1, v.Zoom, 1e-12)

	_, env = do(t, s, http.MethodPut, "/api/view/filter", `{"filter":"crypto"}`)
	require.NoError(t, json.Unmarshal(env.Data, &v))
	assert.EqualValues(t, "crypto", v.Filter)

	w, _ = do(t, s, http.MethodPut, "/api/view/bot", `{"bot_id":"nope"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	_, env = do(t, s, http.MethodPut, "/api/view/bot", `{"bot_id":"bot2"}`)
	require.NoError(t, json.Unmarshal(env.Data, &v))
	assert.Equal(t, "bot2", v.SelectedBot)

	w, _ = do(t, s, http.MethodGet, "/api/chart/AAPL", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReadEndpoints(t *testing.T) {
	s := newServer(t)

	for _, path := range []string{
		"/api/snapshot", "/api/snapshot?series=true", "/api/ticker", "/api/stats",
		"/api/review", "/api/review?filter=stocks", "/api/markets?search=gold",
		"/api/trades", "/api/view",
	} {
		w, env := do(t, s, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.True(t, env.Success, path)
	}

	_, env := do(t, s, http.MethodGet, "/api/markets?search=gold", "")
	var markets []dashboard.Market
	require.NoError(t, json.Unmarshal(env.Data, &markets))
	require.Len(t, markets, 1)
	assert.Equal(t, "GC=F", markets[0].Symbol)
}

func TestExportEndpoint(t *testing.T) {
	s := newServer(t)

	w, _ := do(t, s, http.MethodGet, "/api/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	var snap dashboard.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Len(t, snap.Bots, 7)
	assert.NotEmpty(t, snap.Markets)

	w, _ = do(t, s, http.MethodGet, "/api/export?format=yaml", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/yaml", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "bots:")

	w, env := do(t, s, http.MethodGet, "/api/export?format=xml", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dashboard.CodeInvalidArgument, env.Error.Code)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(logger.Nop()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, dashboard.CodeInternal, env.Error.Code)
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(RequestID(), Logger(logger.NewWriter(&buf, "info", "json")))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bad", nil))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"level":"info"`)
	assert.Contains(t, lines[0], `"request_id"`)
	assert.Contains(t, lines[1], `"level":"warn"`)
	assert.Contains(t, lines[1], `"status":404`)
}

func TestWebsocketSnapshots(t *testing.T) {
	s := newServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Hub().Run(ctx)
	go s.Hub().Stream(ctx, 20*time.Millisecond, MessageSnapshot, func() any { return s.dash.Stats() })

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var greeting struct {
		Type    MessageType        `json:"type"`
		Payload dashboard.Snapshot `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&greeting))
	assert.Equal(t, MessageSnapshot, greeting.Type)
	assert.Len(t, greeting.Payload.Bots, 7)

	var pushed Message
	require.NoError(t, conn.ReadJSON(&pushed))
	assert.Equal(t, MessageSnapshot, pushed.Type)
	assert.Eventually(t, func() bool { return s.Hub().Len() == 1 }, time.Second, 10*time.Millisecond)
}
