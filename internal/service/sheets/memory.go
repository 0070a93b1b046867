package sheets

import (
	"context"
	"strings"
	"sync"
)

// MemoryStore is an in-process Store keyed by sheet name. Ranges narrower than a whole sheet are not modelled.
type MemoryStore struct {
	mu     sync.RWMutex
	sheets map[string][][]any
	err    error
}

// NewMemoryStore returns a store preloaded with the given sheets.
func NewMemoryStore(seed map[string][][]any) *MemoryStore {
	s := &MemoryStore{sheets: make(map[string][][]any, len(seed))}
	for name, rows := range seed {
		s.sheets[strings.ToLower(name)] = copyRows(rows)
	}
	return s
}

// FailWith makes every following call return err; nil restores normal behaviour.
func (s *MemoryStore) FailWith(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Rows returns a snapshot of a sheet.
func (s *MemoryStore) Rows(sheet string) [][]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyRows(s.sheets[strings.ToLower(sheet)])
}

func (s *MemoryStore) Read(_ context.Context, spreadsheetID, readRange string) ([][]any, error) {
	if spreadsheetID == "" {
		return nil, ErrSpreadsheetNotConfigured
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	return copyRows(s.sheets[strings.ToLower(SheetName(readRange))]), nil
}

func (s *MemoryStore) Update(_ context.Context, spreadsheetID, writeRange string, values [][]any) (*UpdateResult, error) {
	if spreadsheetID == "" {
		return nil, ErrSpreadsheetNotConfigured
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	s.sheets[strings.ToLower(SheetName(writeRange))] = copyRows(values)
	return &UpdateResult{
		SpreadsheetID: spreadsheetID,
		UpdatedRange:  writeRange,
		UpdatedRows:   int64(len(values)),
		UpdatedCells:  countCells(values),
	}, nil
}

func (s *MemoryStore) Append(_ context.Context, spreadsheetID, appendRange string, values [][]any) (*AppendResult, error) {
	if spreadsheetID == "" {
		return nil, ErrSpreadsheetNotConfigured
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	key := strings.ToLower(SheetName(appendRange))
	s.sheets[key] = append(s.sheets[key], copyRows(values)...)
	return &AppendResult{
		SpreadsheetID: spreadsheetID,
		TableRange:    appendRange,
		Updates: &UpdateResult{
			SpreadsheetID: spreadsheetID,
			UpdatedRange:  appendRange,
			UpdatedRows:   int64(len(values)),
			UpdatedCells:  countCells(values),
		},
	}, nil
}

func copyRows(rows [][]any) [][]any {
	if rows == nil {
		return nil
	}
	out := make([][]any, len(rows))
	for i, row := range rows {
		out[i] = append([]any(nil), row...)
	}
	return out
}

func countCells(values [][]any) int64 {
	var n int64
	for _, row := range values {
		n += int64(len(row))
	}
	return n
}
