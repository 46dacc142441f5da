package core

import (
	"context"
	"fmt"
	"log"

	"github.com/wneessen/go-mail"

	"github.com/chatrelay/telegram-ai-bot/internal/store"
)

// MailService sends plain-text email over SMTP with implicit TLS and
// records every outcome in the action log, matching the contract that the
// mail gateway owns its own "Email Sent" / "Email Error" records.
type MailService struct {
	host      string
	port      int
	username  string
	password  string
	from      string
	configLog store.ConfigLog
}

func NewMailService(host string, port int, username, password string, configLog store.ConfigLog) *MailService {
	return &MailService{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		from:      username,
		configLog: configLog,
	}
}

// Send delivers one email. Single attempt, no retry. Failures to write the
// log record are swallowed; delivery status is what the caller acts on.
func (s *MailService) Send(ctx context.Context, subject, body, to string) error {
	if err := s.send(ctx, subject, body, to); err != nil {
		if logErr := s.configLog.AppendLog(ctx, "Email Error", err.Error()); logErr != nil {
			log.Printf("Failed to log email error: %v", logErr)
		}
		return err
	}

	details := fmt.Sprintf("To: %s, Subject: %s", to, subject)
	if err := s.configLog.AppendLog(ctx, "Email Sent", details); err != nil {
		log.Printf("Failed to log sent email: %v", err)
	}
	return nil
}

func (s *MailService) send(ctx context.Context, subject, body, to string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("invalid sender address %q: %w", s.from, err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address %q: %w", to, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	client, err := mail.NewClient(s.host,
		mail.WithPort(s.port),
		mail.WithSSL(),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.username),
		mail.WithPassword(s.password),
	)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
