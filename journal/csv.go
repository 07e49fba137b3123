// journal/csv.go
package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

var (
	tradeHeader  = []string{"trade_id", "bot_id", "symbol", "side", "price", "quantity", "time", "chart_index"}
	ledgerHeader = []string{"seq", "time", "kind", "bot_id", "amount", "main", "available"}
)

type CSVJournal struct {
	trades *csv.Writer
	ledger *csv.Writer
	tf, lf *os.File
}

func NewCSV(tradesPath, ledgerPath string) (*CSVJournal, error) {
	tf, err := os.Create(tradesPath)
	if err != nil {
		return nil, err
	}
	lf, err := os.Create(ledgerPath)
	if err != nil {
		tf.Close()
		return nil, err
	}

	tw := csv.NewWriter(tf)
	lw := csv.NewWriter(lf)

	if err := tw.Write(tradeHeader); err != nil {
		return nil, err
	}
	if err := lw.Write(ledgerHeader); err != nil {
		return nil, err
	}

	tw.Flush()
	if err := tw.Error(); err != nil {
		return nil, err
	}
	lw.Flush()
	if err := lw.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{tw, lw, tf, lf}, nil
}

func (j *CSVJournal) RecordTrade(t TradeRecord) error {
	err := j.trades.Write([]string{
		t.TradeID,
		t.BotID,
		t.Symbol,
		t.Side,
		f(t.Price),
		strconv.Itoa(t.Quantity),
		t.Time.Format(time.RFC3339),
		strconv.Itoa(t.ChartIndex),
	})
	if err != nil {
		return err
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSVJournal) RecordLedger(e LedgerRecord) error {
	err := j.ledger.Write([]string{
		strconv.Itoa(e.Seq),
		e.Time.Format(time.RFC3339),
		e.Kind,
		e.BotID,
		e.Amount.String(),
		e.Main.String(),
		e.Available.String(),
	})
	if err != nil {
		return err
	}
	j.ledger.Flush()
	return j.ledger.Error()
}

func (j *CSVJournal) Close() error {
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	j.ledger.Flush()
	if err := j.ledger.Error(); err != nil {
		return err
	}

	if err := j.tf.Close(); err != nil {
		return err
	}
	if err := j.lf.Close(); err != nil {
		return err
	}
	return nil
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
