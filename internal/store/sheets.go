package store

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	configRange = "Config!A2:B" // skip the Key/Value header row
	logsRange   = "Logs!A:C"
)

// SheetsStore backs the ConfigLog contract with a Google spreadsheet:
// a "Config" tab holding Key/Value rows and a "Logs" tab receiving
// appended [timestamp, action, details] rows.
type SheetsStore struct {
	svc           *sheets.Service
	spreadsheetID string
}

func NewSheetsStore(ctx context.Context, credentialsFile, spreadsheetID string) (*SheetsStore, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &SheetsStore{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// GetConfig scans the Config tab for the first row whose key column matches.
// Every lookup hits the spreadsheet; nothing is cached.
func (s *SheetsStore) GetConfig(ctx context.Context, key string) (string, bool, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, configRange).Context(ctx).Do()
	if err != nil {
		return "", false, fmt.Errorf("failed to read config range: %w", err)
	}
	for _, row := range resp.Values {
		if len(row) < 2 {
			continue
		}
		if fmt.Sprint(row[0]) == key {
			return fmt.Sprint(row[1]), true, nil
		}
	}
	return "", false, nil
}

func (s *SheetsStore) AppendLog(ctx context.Context, action, details string) error {
	vr := &sheets.ValueRange{
		Values: [][]interface{}{
			{time.Now().Format(TimestampLayout), action, details},
		},
	}
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, logsRange, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append log row: %w", err)
	}
	return nil
}
