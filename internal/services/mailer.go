package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"sentinel/internal/models"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

const activationSubject = "Activate your Sentinel account"

var activationTemplate = template.Must(template.New("activation").Parse(
	`<h1>Welcome to Sentinel!</h1>` +
		`<p>Hi {{.Name}},</p>` +
		`<p>Please click the link below to activate your account:</p>` +
		`<p><a href="{{.URL}}">Activate my account</a></p>` +
		`<p>If you did not register, please ignore this email.</p>`))

// Mailer delivers account emails.
type Mailer interface {
	SendActivation(ctx context.Context, user *models.User, token string) error
}

// ActivationURL joins the frontend base URL and the token.
func ActivationURL(frontendURL, token string) string {
	return strings.TrimRight(frontendURL, "/") + "/activate/" + token
}

func renderActivationBody(name, url string) (string, error) {
	var buf bytes.Buffer
	if err := activationTemplate.Execute(&buf, struct{ Name, URL string }{name, url}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpMailer struct {
	from        string
	frontendURL string
	dial        func() (gomail.SendCloser, error)
}

func NewSMTPMailer(cfg SMTPConfig, frontendURL string) Mailer {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &smtpMailer{
		from:        cfg.From,
		frontendURL: frontendURL,
		dial:        dialer.Dial,
	}
}

func (m *smtpMailer) message(user *models.User, token string) (*gomail.Message, error) {
	body, err := renderActivationBody(user.DisplayName(), ActivationURL(m.frontendURL, token))
	if err != nil {
		return nil, fmt.Errorf("failed to render activation email: %w", err)
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", user.Email)
	msg.SetHeader("Subject", activationSubject)
	msg.SetBody("text/html", body)
	return msg, nil
}

func (m *smtpMailer) SendActivation(ctx context.Context, user *models.User, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := m.message(user, token)
	if err != nil {
		return err
	}
	sender, err := m.dial()
	if err != nil {
		return fmt.Errorf("failed to connect to smtp server: %w", err)
	}
	defer sender.Close()
	if err := gomail.Send(sender, msg); err != nil {
		return fmt.Errorf("failed to send activation email: %w", err)
	}
	return nil
}

type logMailer struct {
	log         logrus.FieldLogger
	frontendURL string
}

// NewLogMailer writes activation links to the log instead of sending mail.
func NewLogMailer(log logrus.FieldLogger, frontendURL string) Mailer {
	return &logMailer{log: log, frontendURL: frontendURL}
}

func (m *logMailer) SendActivation(_ context.Context, user *models.User, token string) error {
	m.log.WithFields(logrus.Fields{
		"to":      user.Email,
		"subject": activationSubject,
		"url":     ActivationURL(m.frontendURL, token),
	}).Info("activation email (smtp disabled)")
	return nil
}
