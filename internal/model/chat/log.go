package chat

// LogEntry is the flattened record of one turn written to the conversation log.
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Model     string `json:"model"`
	PathUsed  string `json:"pathUsed"`
}

// Row returns the fixed-width spreadsheet row for the entry.
func (e LogEntry) Row() []any {
	return []any{
		e.Timestamp,
		e.SessionID,
		e.UserID,
		string(e.Role),
		e.Content,
		e.Model,
		e.PathUsed,
	}
}
