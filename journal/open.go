package journal

import (
	"fmt"

	"github.com/rustyeddy/atb/config"
)

// Open builds the journal selected by cfg. "none" and "" give Discard.
func Open(cfg config.JournalConfig) (Journal, error) {
	switch cfg.Type {
	case "", "none":
		return Discard{}, nil
	case "csv":
		return NewCSV(cfg.TradesFile, cfg.LedgerFile)
	case "sqlite":
		return NewSQLite(cfg.DBPath)
	default:
		return nil, fmt.Errorf("unknown journal type %q", cfg.Type)
	}
}
