package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tanutchapol/backend-ChatBot/internal/model/auth"
	"github.com/tanutchapol/backend-ChatBot/internal/service/sheets"
)

// ErrDirectoryNotConfigured is returned when the credential table cannot be located.
var ErrDirectoryNotConfigured = errors.New("GOOGLE_SPREADSHEET_ID is not set")

// Directory resolves a PIN to the user it belongs to.
type Directory interface {
	LookupPIN(ctx context.Context, pin string) (auth.User, bool, error)
}

// SheetDirectory reads users from a two-column sheet: A = PIN, B = display name.
type SheetDirectory struct {
	store         sheets.Store
	spreadsheetID string
	sheet         string
}

// NewSheetDirectory builds a Directory over the users sheet of a spreadsheet.
func NewSheetDirectory(store sheets.Store, spreadsheetID, sheet string) *SheetDirectory {
	return &SheetDirectory{store: store, spreadsheetID: spreadsheetID, sheet: sheet}
}

func (d *SheetDirectory) LookupPIN(ctx context.Context, pin string) (auth.User, bool, error) {
	if d.spreadsheetID == "" || d.store == nil {
		return auth.User{}, false, ErrDirectoryNotConfigured
	}

	rows, err := d.store.Read(ctx, d.spreadsheetID, d.sheet+"!A:B")
	if err != nil {
		return auth.User{}, false, fmt.Errorf("read users sheet: %w", err)
	}

	for _, row := range rows {
		if cell(row, 0) != pin {
			continue
		}
		return newUser(pin, cell(row, 1)), true, nil
	}
	return auth.User{}, false, nil
}

// MemoryDirectory implements Directory with a fixed PIN -> name table.
type MemoryDirectory struct {
	names map[string]string
}

// NewMemoryDirectory returns a MemoryDirectory preloaded with the supplied entries.
func NewMemoryDirectory(names map[string]string) *MemoryDirectory {
	copied := make(map[string]string, len(names))
	for pin, name := range names {
		copied[pin] = name
	}
	return &MemoryDirectory{names: copied}
}

func (d *MemoryDirectory) LookupPIN(_ context.Context, pin string) (auth.User, bool, error) {
	name, ok := d.names[pin]
	if !ok {
		return auth.User{}, false, nil
	}
	return newUser(pin, name), true, nil
}

func newUser(pin, name string) auth.User {
	if name == "" {
		name = "User-" + pin[len(pin)-min(4, len(pin)):]
	}
	return auth.User{ID: name, Name: name, PIN: pin}
}

func cell(row []any, i int) string {
	if i >= len(row) || row[i] == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(row[i]))
}
