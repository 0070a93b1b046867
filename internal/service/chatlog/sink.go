package chatlog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tanutchapol/backend-ChatBot/internal/model/chat"
	"github.com/tanutchapol/backend-ChatBot/internal/service/sheets"
)

const DefaultSheet = "Chats"

// ErrMissingConfiguration is returned when no spreadsheet id or store is configured.
var ErrMissingConfiguration = errors.New("GOOGLE_SPREADSHEET_ID is not set")

// Result reports how many entries were accepted.
type Result struct {
	Appended int `json:"appended"`
}

// EntryAppender persists log entries somewhere.
type EntryAppender interface {
	AppendEntries(ctx context.Context, entries []chat.LogEntry) (Result, error)
}

// Sink appends log entries as rows of the chat sheet.
type Sink struct {
	store         sheets.Store
	spreadsheetID string
	sheet         string
}

// NewSink builds a Sink writing to sheet (DefaultSheet when empty) of the given spreadsheet.
func NewSink(store sheets.Store, spreadsheetID, sheet string) *Sink {
	if sheet == "" {
		sheet = DefaultSheet
	}
	return &Sink{store: store, spreadsheetID: spreadsheetID, sheet: sheet}
}

// Range is the A1 range rows are appended to.
func (s *Sink) Range() string {
	return s.sheet + "!A:G"
}

// AppendEntries writes one row per entry. Empty input writes nothing.
func (s *Sink) AppendEntries(ctx context.Context, entries []chat.LogEntry) (Result, error) {
	if s.spreadsheetID == "" || s.store == nil {
		return Result{}, ErrMissingConfiguration
	}
	if len(entries) == 0 {
		return Result{}, nil
	}

	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		if e.Timestamp == "" {
			e.Timestamp = Timestamp(time.Now())
		}
		rows = append(rows, e.Row())
	}

	if _, err := s.store.Append(ctx, s.spreadsheetID, s.Range(), rows); err != nil {
		return Result{}, fmt.Errorf("append chat entries: %w", err)
	}
	return Result{Appended: len(rows)}, nil
}

// Timestamp formats t as an ISO-8601 UTC instant with millisecond precision.
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
