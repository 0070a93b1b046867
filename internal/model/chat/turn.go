package chat

// Role tags the author of a turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the roles accepted upstream.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

// Turn is one message of a conversation, resent upstream on every call.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// SystemTurn builds the directive turn that heads a session.
func SystemTurn(content string) Turn {
	return Turn{Role: RoleSystem, Content: content}
}

// UserTurn builds a caller turn.
func UserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content}
}

// AssistantTurn builds a turn produced by the upstream provider.
func AssistantTurn(content string) Turn {
	return Turn{Role: RoleAssistant, Content: content}
}
