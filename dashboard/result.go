package dashboard

import (
	"errors"

	"github.com/rustyeddy/atb/bots"
	"github.com/rustyeddy/atb/ledger"
	"github.com/rustyeddy/atb/market"
)

// Result codes returned to presentation adapters.
const (
	CodeNotFound               = "NOT_FOUND"
	CodeInsufficientFunds      = "INSUFFICIENT_FUNDS"
	CodeInsufficientAllocation = "INSUFFICIENT_ALLOCATION"
	CodeInvalidAmount          = "INVALID_AMOUNT"
	CodeInvalidArgument        = "INVALID_ARGUMENT"
	CodeInternal               = "INTERNAL_ERROR"
)

// Result is the structured outcome of a command.
type Result struct {
	OK      bool   `json:"ok"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// ResultOf classifies err. A nil error is OK.
func ResultOf(err error) Result {
	if err == nil {
		return Result{OK: true}
	}
	return Result{Code: Code(err), Message: err.Error()}
}

func Code(err error) string {
	switch {
	case errors.Is(err, bots.ErrNotFound), errors.Is(err, market.ErrUnknownSymbol):
		return CodeNotFound
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return CodeInsufficientFunds
	case errors.Is(err, ledger.ErrInsufficientAllocation):
		return CodeInsufficientAllocation
	case errors.Is(err, ledger.ErrInvalidAmount):
		return CodeInvalidAmount
	case errors.Is(err, ErrInvalidArgument),
		errors.Is(err, bots.ErrInvalidConfig),
		errors.Is(err, bots.ErrDuplicateID),
		errors.Is(err, market.ErrUnknownTimeframe):
		return CodeInvalidArgument
	}
	return CodeInternal
}
