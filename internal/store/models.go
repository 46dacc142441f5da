package store

import (
	"context"
	"time"
)

// TimestampLayout is the wall-clock format written into log records.
const TimestampLayout = "2006-01-02 15:04:05"

type LogRecord struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
}

// ConfigLog is the remote key-value config lookup and append-only action
// log consumed by the bot. Config entries are read-only from the bot's
// perspective; log records are write-only and timestamped by the store.
// Implementations must be safe for concurrent use.
type ConfigLog interface {
	GetConfig(ctx context.Context, key string) (value string, found bool, err error)
	AppendLog(ctx context.Context, action, details string) error
}
