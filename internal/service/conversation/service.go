package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	log "github.com/charmbracelet/log"

	"github.com/tanutchapol/backend-ChatBot/internal/model/auth"
	"github.com/tanutchapol/backend-ChatBot/internal/model/chat"
	"github.com/tanutchapol/backend-ChatBot/internal/service/ai"
	"github.com/tanutchapol/backend-ChatBot/internal/service/chatlog"
)

// ErrUnauthorized is returned when the token does not resolve to a user.
var ErrUnauthorized = errors.New("unauthorized")

var now = time.Now

// Verifier resolves bearer tokens.
type Verifier interface {
	Verify(ctx context.Context, token string) (auth.User, bool)
}

// Completer performs a fallback-aware chat completion.
type Completer interface {
	ChatCompletions(ctx context.Context, payload ai.ChatPayload) (*ai.Completion, error)
}

// Sessions is the per-session turn store.
type Sessions interface {
	Lock(sessionID string) func()
	GetOrCreate(sessionID string) []chat.Turn
	EnsureSystem(sessionID, content string) bool
	Append(sessionID string, turn chat.Turn) int
	History(sessionID string) []chat.Turn
	Clear(sessionID string) bool
}

// Service runs the send-message flow: authenticate, record, complete, record reply, log.
type Service struct {
	verifier     Verifier
	sessions     Sessions
	completer    Completer
	logs         chatlog.Dispatcher
	defaultModel string
}

// NewService wires the gateway collaborators. A nil dispatcher disables the chat log.
func NewService(verifier Verifier, sessions Sessions, completer Completer, logs chatlog.Dispatcher, defaultModel string) *Service {
	if logs == nil {
		logs = chatlog.Discard{}
	}
	return &Service{
		verifier:     verifier,
		sessions:     sessions,
		completer:    completer,
		logs:         logs,
		defaultModel: defaultModel,
	}
}

// SendRequest is one caller message.
type SendRequest struct {
	SessionID string
	Token     string
	Content   string
	Role      chat.Role
	System    string
	Model     string
	Options   ai.Options
}

// SendResult is what the caller gets back.
type SendResult struct {
	SessionID   string          `json:"sessionId"`
	PathUsed    string          `json:"pathUsed"`
	Reply       string          `json:"reply"`
	HistorySize int             `json:"historySize"`
	Raw         json.RawMessage `json:"raw"`
}

// SendMessage appends the caller turn, sends the whole history upstream and records the reply.
// The caller turn stays recorded when the upstream call fails.
func (s *Service) SendMessage(ctx context.Context, req SendRequest) (*SendResult, error) {
	user, err := s.authenticate(ctx, req.Token)
	if err != nil {
		return nil, err
	}

	if req.SessionID == "" {
		return nil, fmt.Errorf("%w: session id is required", ai.ErrInvalidRequest)
	}
	if req.Content == "" {
		return nil, fmt.Errorf("%w: content is required (string)", ai.ErrInvalidRequest)
	}
	role := req.Role
	if role == "" {
		role = chat.RoleUser
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: role must be one of system, user, assistant", ai.ErrInvalidRequest)
	}
	// The only system turn is the one placed first by the system field.
	if role == chat.RoleSystem {
		return nil, fmt.Errorf("%w: role system is not allowed for content, use the system field", ai.ErrInvalidRequest)
	}

	model := req.Model
	if model == "" {
		model = s.defaultModel
	}

	completion, reply, size, err := s.exchange(ctx, req, role, model)
	if err != nil {
		return nil, err
	}

	s.logs.Dispatch(s.logEntries(req.SessionID, user, role, req.Content, reply, model, completion.PathUsed))

	return &SendResult{
		SessionID:   req.SessionID,
		PathUsed:    completion.PathUsed,
		Reply:       reply,
		HistorySize: size,
		Raw:         completion.Data,
	}, nil
}

// exchange holds the session lock across the history update, the upstream call and the reply append.
func (s *Service) exchange(ctx context.Context, req SendRequest, role chat.Role, model string) (*ai.Completion, string, int, error) {
	unlock := s.sessions.Lock(req.SessionID)
	defer unlock()

	s.sessions.GetOrCreate(req.SessionID)
	if req.System != "" {
		s.sessions.EnsureSystem(req.SessionID, req.System)
	}
	s.sessions.Append(req.SessionID, chat.Turn{Role: role, Content: req.Content})

	turns := s.sessions.History(req.SessionID)
	completion, err := s.completer.ChatCompletions(ctx, ai.ChatPayload{
		Model:    model,
		Messages: turns,
		Options:  req.Options,
	})
	if err != nil {
		log.Warn("chat completion failed", "session", req.SessionID, "err", err)
		return nil, "", 0, err
	}

	reply, shape := ai.ExtractReply(completion.Data)
	size := len(turns)
	if reply != "" {
		size = s.sessions.Append(req.SessionID, chat.AssistantTurn(reply))
	} else {
		log.Debug("no assistant text in upstream response", "session", req.SessionID, "shape", shape)
	}
	return completion, reply, size, nil
}

func (s *Service) logEntries(sessionID string, user auth.User, role chat.Role, content, reply, model, pathUsed string) []chat.LogEntry {
	userID := user.Identity()
	return []chat.LogEntry{
		{
			Timestamp: chatlog.Timestamp(now()),
			SessionID: sessionID,
			UserID:    userID,
			Role:      role,
			Content:   content,
			Model:     model,
			PathUsed:  pathUsed,
		},
		{
			Timestamp: chatlog.Timestamp(now()),
			SessionID: sessionID,
			UserID:    userID,
			Role:      chat.RoleAssistant,
			Content:   reply,
			Model:     model,
			PathUsed:  pathUsed,
		},
	}
}

// History returns the session turns, registering the session if it is new.
func (s *Service) History(ctx context.Context, token, sessionID string) ([]chat.Turn, error) {
	if _, err := s.authenticate(ctx, token); err != nil {
		return nil, err
	}
	return s.sessions.GetOrCreate(sessionID), nil
}

// Clear drops the session and reports whether it existed. It waits for an in-flight send on the same session.
func (s *Service) Clear(ctx context.Context, token, sessionID string) (bool, error) {
	if _, err := s.authenticate(ctx, token); err != nil {
		return false, err
	}

	unlock := s.sessions.Lock(sessionID)
	defer unlock()
	return s.sessions.Clear(sessionID), nil
}

// Authenticate resolves token or fails with ErrUnauthorized.
func (s *Service) Authenticate(ctx context.Context, token string) (auth.User, error) {
	return s.authenticate(ctx, token)
}

func (s *Service) authenticate(ctx context.Context, token string) (auth.User, error) {
	user, ok := s.verifier.Verify(ctx, token)
	if !ok {
		return auth.User{}, ErrUnauthorized
	}
	return user, nil
}
