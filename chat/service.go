package chat

import (
	"context"
	"strings"

	"campus-agent/config"
	"campus-agent/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const apologyResponse = "I apologize, but I encountered an error while processing your request."

// Service orchestrates one chat turn: persist the user message, assemble
// context, call the generation service, persist the reply. Context assembly
// is complete before the generation call starts; a failed generation call
// degrades to a canned apology and never loses the user's message.
type Service struct {
	store     *database.PostgresStore
	assembler *Assembler
	llm       *Client
	cfg       *config.Config
	logger    *zap.Logger
}

func NewService(store *database.PostgresStore, assembler *Assembler, llm *Client, cfg *config.Config, logger *zap.Logger) *Service {
	return &Service{
		store:     store,
		assembler: assembler,
		llm:       llm,
		cfg:       cfg,
		logger:    logger,
	}
}

// CreateChat starts a new conversation.
func (s *Service) CreateChat(ctx context.Context, chat database.Chat) (database.Chat, error) {
	return s.store.CreateChat(ctx, chat)
}

// ListChats returns a user's active chats, most recently touched first.
func (s *Service) ListChats(ctx context.Context, userID int64) ([]database.Chat, error) {
	return s.store.ChatsByUser(ctx, userID)
}

// ChatWithMessages returns a chat and its full message history.
func (s *Service) ChatWithMessages(ctx context.Context, chatID uuid.UUID) (database.Chat, []database.Message, error) {
	chat, err := s.store.Chat(ctx, chatID)
	if err != nil {
		return database.Chat{}, nil, err
	}
	messages, err := s.store.MessagesByChat(ctx, chatID)
	if err != nil {
		return database.Chat{}, nil, err
	}
	return chat, messages, nil
}

// RenameChat sets a chat's title.
func (s *Service) RenameChat(ctx context.Context, chatID uuid.UUID, title string) error {
	return s.store.RenameChat(ctx, chatID, title)
}

// DeleteChat soft-deletes a chat.
func (s *Service) DeleteChat(ctx context.Context, chatID uuid.UUID) error {
	return s.store.DeactivateChat(ctx, chatID)
}

// Turn is the outcome of one SendMessage call.
type Turn struct {
	UserMessage      database.Message
	AssistantMessage database.Message
	ChatTitle        string
	Degraded         bool
}

// SendMessage runs the full pipeline for one user message in an existing
// chat.
func (s *Service) SendMessage(ctx context.Context, chatID uuid.UUID, content string) (Turn, error) {
	content = strings.TrimSpace(content)
	chat, err := s.store.Chat(ctx, chatID)
	if err != nil {
		return Turn{}, err
	}

	priorCount, err := s.store.MessageCount(ctx, chatID)
	if err != nil {
		return Turn{}, err
	}
	history, err := s.store.MessagesByChat(ctx, chatID)
	if err != nil {
		return Turn{}, err
	}

	userMsg := database.Message{
		ID:         uuid.New(),
		ChatID:     chatID,
		Role:       "user",
		Content:    content,
		TokenCount: EstimateTokens(content),
	}
	if err := s.store.CreateMessage(ctx, userMsg); err != nil {
		return Turn{}, err
	}

	var universityID int64
	if chat.UniversityID != nil {
		universityID = *chat.UniversityID
	}
	pctx := s.assembler.Build(ctx, content, universityID, chat.DepartmentID)

	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, Message{Role: "system", Content: pctx.SystemPrompt()})
	for _, m := range history {
		messages = append(messages, Message{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, Message{Role: "user", Content: content})

	reply, err := s.llm.Chat(ctx, messages, 0, 0)
	degraded := false
	model := s.cfg.LLMModel
	if err != nil {
		s.logger.Error("Generation call failed, returning degraded response",
			zap.String("chat_id", chatID.String()),
			zap.Error(err))
		reply = apologyResponse
		degraded = true
		model = ""
	}

	assistantMsg := database.Message{
		ID:         uuid.New(),
		ChatID:     chatID,
		Role:       "assistant",
		Content:    reply,
		Model:      model,
		TokenCount: EstimateTokens(reply),
		Sources:    pctx.Sources,
	}
	if err := s.store.CreateMessage(ctx, assistantMsg); err != nil {
		return Turn{}, err
	}
	if err := s.store.TouchChat(ctx, chatID); err != nil {
		s.logger.Warn("Failed to touch chat timestamp", zap.Error(err))
	}

	// First message in the chat: derive a title for it.
	title := chat.Title
	if priorCount == 0 && content != "" {
		title = s.GenerateTitle(ctx, content)
		if err := s.store.RenameChat(ctx, chatID, title); err != nil {
			s.logger.Warn("Failed to set generated chat title", zap.Error(err))
			title = chat.Title
		}
	}

	return Turn{
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
		ChatTitle:        title,
		Degraded:         degraded,
	}, nil
}
