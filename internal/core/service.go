package core

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/chatrelay/telegram-ai-bot/internal/session"
	"github.com/chatrelay/telegram-ai-bot/internal/store"
)

const (
	chatSystemPrompt = "You are a helpful AI assistant. Respond naturally and engagingly in conversations."
	chatMaxTokens    = 200

	welcomeReply = "Hello! I'm your AI chat assistant with email capabilities.\n" +
		"- Chat with me for AI responses.\n" +
		"- Use /email recipient@example.com Your message to send an email.\n" +
		"- /clear to reset chat history.\n" +
		"Actions are saved to the bot's log!"
)

// Generator produces one reply for a list of role-tagged turns.
type Generator interface {
	Generate(ctx context.Context, systemPrompt string, turns []session.Turn, maxTokens int32) (string, error)
}

// Mailer delivers one plain-text email.
type Mailer interface {
	Send(ctx context.Context, subject, body, to string) error
}

// Service is the command router: it classifies each inbound message and
// coordinates the session store and the gateways. Gateway failures never
// escape a handler; they are converted into user-visible replies.
type Service struct {
	sessions  *session.Store
	generator Generator
	mailer    Mailer
	configLog store.ConfigLog
}

func NewService(sessions *session.Store, generator Generator, mailer Mailer, configLog store.ConfigLog) *Service {
	return &Service{
		sessions:  sessions,
		generator: generator,
		mailer:    mailer,
		configLog: configLog,
	}
}

// HandleMessage routes one inbound message and returns the reply to send
// back. First match wins: /start, /clear, /email prefix, then free chat.
// Unknown slash commands deliberately fall through to the chat handler.
func (s *Service) HandleMessage(ctx context.Context, userID int64, text string) string {
	switch {
	case text == "/start":
		s.sessions.Clear(userID)
		return welcomeReply

	case text == "/clear":
		s.sessions.Clear(userID)
		if err := s.configLog.AppendLog(ctx, "History Cleared", fmt.Sprintf("User: %d", userID)); err != nil {
			log.Printf("Failed to log history clear for user %d: %v", userID, err)
		}
		return "Conversation history cleared and logged!"

	case strings.HasPrefix(text, "/email"):
		return s.handleEmail(ctx, userID, text)

	default:
		return s.handleChat(ctx, userID, text)
	}
}

func (s *Service) handleChat(ctx context.Context, userID int64, text string) string {
	s.sessions.Append(userID, session.Turn{Role: session.RoleUser, Content: text})

	history := s.sessions.Get(userID)
	reply, err := s.generator.Generate(ctx, chatSystemPrompt, history, chatMaxTokens)
	if err != nil {
		log.Printf("Chat generation failed for user %d: %v", userID, err)
		reply = fmt.Sprintf("Sorry, I encountered an error: %v", err)
	} else {
		reply = strings.TrimSpace(reply)
	}

	// A failed generation still occupies an assistant slot so history never
	// ends on an unanswered user turn.
	s.sessions.Append(userID, session.Turn{Role: session.RoleAssistant, Content: reply})
	return reply
}
