package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

const valueInputOption = "USER_ENTERED"

// ErrSpreadsheetNotConfigured is returned when no spreadsheet id is available for a call.
var ErrSpreadsheetNotConfigured = errors.New("GOOGLE_SPREADSHEET_ID is not set")

// Store is the row-oriented tabular backend used by login, the chat log and the raw sheet routes.
type Store interface {
	Read(ctx context.Context, spreadsheetID, readRange string) ([][]any, error)
	Update(ctx context.Context, spreadsheetID, writeRange string, values [][]any) (*UpdateResult, error)
	Append(ctx context.Context, spreadsheetID, appendRange string, values [][]any) (*AppendResult, error)
}

// UpdateResult summarises a range update.
type UpdateResult struct {
	SpreadsheetID  string `json:"spreadsheetId"`
	UpdatedRange   string `json:"updatedRange"`
	UpdatedRows    int64  `json:"updatedRows"`
	UpdatedColumns int64  `json:"updatedColumns"`
	UpdatedCells   int64  `json:"updatedCells"`
}

// AppendResult summarises an append.
type AppendResult struct {
	SpreadsheetID string        `json:"spreadsheetId"`
	TableRange    string        `json:"tableRange,omitempty"`
	Updates       *UpdateResult `json:"updates,omitempty"`
}

// Service implements Store on top of the Google Sheets v4 API.
type Service struct {
	api *gsheets.Service
}

// NewService builds a client authenticated with a service-account credentials file.
func NewService(ctx context.Context, credentialsFile string, opts ...option.ClientOption) (*Service, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials %s: %w", credentialsFile, err)
	}

	creds, err := google.CredentialsFromJSON(ctx, data, gsheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}

	return NewServiceWithOptions(ctx, append([]option.ClientOption{option.WithCredentials(creds)}, opts...)...)
}

// NewServiceWithOptions builds a client with caller supplied options, e.g. a custom endpoint.
func NewServiceWithOptions(ctx context.Context, opts ...option.ClientOption) (*Service, error) {
	api, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Service{api: api}, nil
}

// Read returns the values of a range; an empty range yields no rows.
func (s *Service) Read(ctx context.Context, spreadsheetID, readRange string) ([][]any, error) {
	if spreadsheetID == "" {
		return nil, ErrSpreadsheetNotConfigured
	}

	resp, err := s.api.Spreadsheets.Values.Get(spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", readRange, err)
	}

	rows := make([][]any, 0, len(resp.Values))
	for _, row := range resp.Values {
		rows = append(rows, row)
	}
	return rows, nil
}

// Update overwrites a range.
func (s *Service) Update(ctx context.Context, spreadsheetID, writeRange string, values [][]any) (*UpdateResult, error) {
	if spreadsheetID == "" {
		return nil, ErrSpreadsheetNotConfigured
	}

	resp, err := s.api.Spreadsheets.Values.
		Update(spreadsheetID, writeRange, &gsheets.ValueRange{Values: toSheetValues(values)}).
		ValueInputOption(valueInputOption).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", writeRange, err)
	}

	return updateResult(resp), nil
}

// Append adds rows after the last row of the table found in the range.
func (s *Service) Append(ctx context.Context, spreadsheetID, appendRange string, values [][]any) (*AppendResult, error) {
	if spreadsheetID == "" {
		return nil, ErrSpreadsheetNotConfigured
	}

	resp, err := s.api.Spreadsheets.Values.
		Append(spreadsheetID, appendRange, &gsheets.ValueRange{Values: toSheetValues(values)}).
		ValueInputOption(valueInputOption).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("append %s: %w", appendRange, err)
	}

	return &AppendResult{
		SpreadsheetID: resp.SpreadsheetId,
		TableRange:    resp.TableRange,
		Updates:       updateResult(resp.Updates),
	}, nil
}

// SheetName extracts the sheet part of an A1 range, unquoting 'My Sheet'!A1:B.
func SheetName(a1Range string) string {
	head, _, _ := strings.Cut(a1Range, "!")
	head = strings.TrimPrefix(head, "'")
	head = strings.TrimSuffix(head, "'")
	return strings.TrimSpace(head)
}

func toSheetValues(values [][]any) [][]interface{} {
	out := make([][]interface{}, len(values))
	for i, row := range values {
		out[i] = row
	}
	return out
}

func updateResult(resp *gsheets.UpdateValuesResponse) *UpdateResult {
	if resp == nil {
		return nil
	}
	return &UpdateResult{
		SpreadsheetID:  resp.SpreadsheetId,
		UpdatedRange:   resp.UpdatedRange,
		UpdatedRows:    resp.UpdatedRows,
		UpdatedColumns: resp.UpdatedColumns,
		UpdatedCells:   resp.UpdatedCells,
	}
}
