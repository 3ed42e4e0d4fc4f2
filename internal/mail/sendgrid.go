package mail

import (
	"context"
	"errors"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

type SendGridConfig struct {
	APIKey string
	From   string
	// BaseURL overrides the API endpoint; empty means the public SendGrid API.
	BaseURL string
}

// SendGridSender delivers through the SendGrid v3 mail send API.
type SendGridSender struct {
	client *sendgrid.Client
	from   *sgmail.Email
}

func NewSendGridSender(cfg SendGridConfig) (*SendGridSender, error) {
	if cfg.APIKey == "" || cfg.From == "" {
		return nil, errors.New("sendgrid: api key and sender address are required")
	}
	client := sendgrid.NewSendClient(cfg.APIKey)
	if cfg.BaseURL != "" {
		client.Request.BaseURL = cfg.BaseURL + "/v3/mail/send"
	}
	return &SendGridSender{
		client: client,
		from:   sgmail.NewEmail("", cfg.From),
	}, nil
}

func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	email := sgmail.NewSingleEmail(s.from, msg.Subject, sgmail.NewEmail(msg.ToName, msg.To), msg.Text, msg.HTML)
	resp, err := s.client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
