package email

import (
	"context"
	"fmt"

	"github.com/Jidetireni/sanctuary-access/internal/config"
	"github.com/Jidetireni/sanctuary-access/pkg/logger"
	"gopkg.in/gomail.v2"
)

// Dialer delivers composed messages. *gomail.Dialer satisfies it.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type Email struct {
	config *config.Config
	logger *logger.Logger
	cache  *EmailTemplateCache
	dialer Dialer
}

func New(cfg *config.Config, logger *logger.Logger) (*Email, error) {
	cache, err := NewEmailTemplateCache(embeddedTemplates, templateCacheSize)
	if err != nil {
		return nil, err
	}

	username := cfg.Email.Username
	if username == "" {
		username = cfg.Email.From
	}

	return &Email{
		config: cfg,
		logger: logger,
		cache:  cache,
		dialer: gomail.NewDialer(cfg.Email.Host, cfg.Email.Port, username, cfg.Email.Password),
	}, nil
}

// WithDialer swaps the SMTP transport.
func (e *Email) WithDialer(d Dialer) *Email {
	e.dialer = d
	return e
}

func (e *Email) Send(ctx context.Context, input *SendEmailInput) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// In dev mode
	if e.config.IsDev {
		e.logger.Info().
			Str("to", input.To).
			Str("subject", input.Subject).
			Str("body", input.Body).
			Msg("email not sent in development")
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", e.config.Email.From)
	m.SetHeader("To", input.To)
	m.SetHeader("Subject", input.Subject)
	m.SetBody("text/html", input.Body)

	if err := e.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// SendTemplate renders the named template with data and sends the result.
func (e *Email) SendTemplate(ctx context.Context, to, subject string, name EmailTemplateType, data any) error {
	body, err := e.cache.Render(name, data)
	if err != nil {
		return err
	}

	return e.Send(ctx, &SendEmailInput{
		To:      to,
		Subject: subject,
		Body:    body,
	})
}
