// Package mail composes the account emails and hands them to a Sender.
package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"

	"account-auth/internal/observability/metrics"
)

// DefaultTimeout bounds a single delivery attempt.
const DefaultTimeout = 10 * time.Second

var ErrNoRecipient = errors.New("mail: empty recipient")

type Message struct {
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type Config struct {
	// PublicBaseURL prefixes the links in every email, e.g. "http://localhost:4000".
	PublicBaseURL string
	Timeout       time.Duration
}

var (
	verificationTmpl = template.Must(template.New("verification").Parse(
		`<h1>Welcome, {{.Username}}</h1>
<p>Verify your account by clicking this link:</p>
<a href="{{.Link}}">Link</a>
`))

	resetTmpl = template.Must(template.New("reset").Parse(
		`<h1>Welcome, {{.Username}}</h1>
<p>To reset your password use this link:</p>
<a href="{{.Link}}">Link</a>
`))
)

// Service implements the account email flows on top of a Sender.
type Service struct {
	sender  Sender
	baseURL string
	timeout time.Duration
}

func NewService(sender Sender, cfg Config) *Service {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Service{
		sender:  sender,
		baseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		timeout: cfg.Timeout,
	}
}

func (s *Service) SendVerification(ctx context.Context, to, username, code string) error {
	link := s.link("/users/verify-account/", code)
	return s.send(ctx, "verification", verificationTmpl, to, username, link,
		"Verify your account",
		"Please verify your account: "+link)
}

func (s *Service) SendPasswordReset(ctx context.Context, to, username, token string) error {
	link := s.link("/users/reset-password/", token)
	return s.send(ctx, "password_reset", resetTmpl, to, username, link,
		"Reset password request",
		"Click the link to reset password: "+link)
}

func (s *Service) link(path, secret string) string {
	return s.baseURL + path + url.PathEscape(secret)
}

func (s *Service) send(ctx context.Context, kind string, tmpl *template.Template, to, username, link, subject, text string) (err error) {
	defer func() {
		result := "success"
		if err != nil {
			result = "failure"
		}
		metrics.EmailsSentTotal.WithLabelValues(kind, result).Inc()
	}()

	if strings.TrimSpace(to) == "" {
		return ErrNoRecipient
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, struct{ Username, Link string }{username, link}); err != nil {
		return fmt.Errorf("render %s email: %w", kind, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	msg := Message{To: to, ToName: username, Subject: subject, Text: text, HTML: body.String()}
	if err := s.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send %s email: %w", kind, err)
	}
	return nil
}
