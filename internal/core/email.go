package core

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/chatrelay/telegram-ai-bot/internal/session"
)

const (
	emailSystemPrompt = "Rephrase the following message as a polite, professional email body."
	emailMaxTokens    = 150

	directEmailSubject       = "Message from Telegram AI Bot"
	conversationEmailSubject = "AI Chat Conversation from Telegram Bot"

	defaultEmailConfigKey = "DEFAULT_EMAIL"
)

var (
	// /email <recipient> <message>; (?s) keeps text after a newline in the
	// message part.
	emailCommandRe = regexp.MustCompile(`(?s)^/email\s+(\S+)\s+(.+)$`)

	// Loose syntactic check, deliberately not full RFC validation.
	recipientRe = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)
)

func (s *Service) handleEmail(ctx context.Context, userID int64, text string) string {
	match := emailCommandRe.FindStringSubmatch(text)
	if match == nil {
		// No recipient/message pair: email the whole conversation to the
		// configured default recipient instead.
		return s.emailConversation(ctx, userID)
	}

	recipient := match[1]
	rawMessage := strings.TrimSpace(match[2])

	if !recipientRe.MatchString(recipient) {
		return "Invalid email address. Use: /email recipient@example.com Your message"
	}

	polished, err := s.generator.Generate(ctx, emailSystemPrompt,
		[]session.Turn{{Role: session.RoleUser, Content: rawMessage}}, emailMaxTokens)
	if err != nil {
		// Polishing is non-fatal; the email still goes out with the raw text.
		log.Printf("Failed to refine email body for user %d: %v", userID, err)
		polished = fmt.Sprintf("Error refining message: %v. Original: %s", err, rawMessage)
	} else {
		polished = strings.TrimSpace(polished)
	}

	if err := s.mailer.Send(ctx, directEmailSubject, polished, recipient); err != nil {
		log.Printf("Failed to send email for user %d: %v", userID, err)
		return "Failed to send email."
	}
	return fmt.Sprintf("Email sent to %s and logged!", recipient)
}

func (s *Service) emailConversation(ctx context.Context, userID int64) string {
	defaultEmail, found, err := s.configLog.GetConfig(ctx, defaultEmailConfigKey)
	if err != nil {
		log.Printf("Failed to look up default email: %v", err)
		return "Could not look up the default email address."
	}
	if !found || defaultEmail == "" {
		return "No default email set in the Config sheet."
	}

	history := s.sessions.Get(userID)
	if len(history) == 0 {
		return "No conversation to email."
	}

	var body strings.Builder
	body.WriteString("Conversation History:\n\n")
	for _, turn := range history {
		fmt.Fprintf(&body, "%s: %s\n\n", capitalizeRole(turn.Role), turn.Content)
	}

	if err := s.mailer.Send(ctx, conversationEmailSubject, body.String(), defaultEmail); err != nil {
		log.Printf("Failed to email conversation for user %d: %v", userID, err)
		return "Failed to send email."
	}
	return fmt.Sprintf("Conversation emailed to %s and logged!", defaultEmail)
}

func capitalizeRole(role string) string {
	if role == "" {
		return role
	}
	return strings.ToUpper(role[:1]) + role[1:]
}
