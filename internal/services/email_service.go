package services

import (
	"context"
	"fmt"

	"tushare/internal/config"
	"tushare/pkg/logger"

	"gopkg.in/gomail.v2"
)

// EmailService queues outbound mail. Sending happens on a background
// worker so a slow SMTP server never holds up a request, and delivery
// failures are logged rather than surfaced to the caller.
type EmailService interface {
	SendVerificationEmail(ctx context.Context, to, name, link string) error
	SendPasswordResetEmail(ctx context.Context, to, name, link string) error
	Close()
}

type outboundEmail struct {
	to      string
	subject string
	body    string
}

type smtpEmailService struct {
	config *config.SMTPConfig
	logger *logger.Logger
	outbox chan outboundEmail
	done   chan struct{}
}

func NewEmailService(cfg *config.SMTPConfig, log *logger.Logger) EmailService {
	s := &smtpEmailService{
		config: cfg,
		logger: log,
		outbox: make(chan outboundEmail, 64),
		done:   make(chan struct{}),
	}

	go s.worker()

	return s
}

func (s *smtpEmailService) SendVerificationEmail(ctx context.Context, to, name, link string) error {
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>Welcome to TuShare! Please verify your email address by clicking the link below:</p>
<p><a href="%s">Verify my email</a></p>
<p>The link expires in 30 minutes. If you did not create an account, you can ignore this message.</p>`, name, link)

	return s.enqueue(outboundEmail{
		to:      to,
		subject: "Verify your TuShare account",
		body:    body,
	})
}

func (s *smtpEmailService) SendPasswordResetEmail(ctx context.Context, to, name, link string) error {
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>We received a request to reset your password. Click the link below to choose a new one:</p>
<p><a href="%s">Reset my password</a></p>
<p>The link expires in 30 minutes. If you did not request a reset, you can ignore this message.</p>`, name, link)

	return s.enqueue(outboundEmail{
		to:      to,
		subject: "Reset your TuShare password",
		body:    body,
	})
}

// enqueue never blocks the request path. A full outbox drops the mail
// with a log line instead of stalling the handler.
func (s *smtpEmailService) enqueue(email outboundEmail) error {
	select {
	case s.outbox <- email:
		return nil
	default:
		s.logger.WithField("to", email.to).Warn("Email outbox full, dropping message")
		return nil
	}
}

func (s *smtpEmailService) worker() {
	dialer := gomail.NewDialer(s.config.Host, s.config.Port, s.config.Username, s.config.Password)

	for {
		select {
		case email := <-s.outbox:
			s.deliver(dialer, email)
		case <-s.done:
			// Drain what is already queued before shutting down.
			for {
				select {
				case email := <-s.outbox:
					s.deliver(dialer, email)
				default:
					return
				}
			}
		}
	}
}

func (s *smtpEmailService) deliver(dialer *gomail.Dialer, email outboundEmail) {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.config.FromEmail, s.config.FromName)
	m.SetHeader("To", email.to)
	m.SetHeader("Subject", email.subject)
	m.SetBody("text/html", email.body)

	if err := dialer.DialAndSend(m); err != nil {
		s.logger.WithError(err).WithField("to", email.to).Error("Failed to send email")
		return
	}

	s.logger.WithField("to", email.to).Debug("Email sent")
}

func (s *smtpEmailService) Close() {
	close(s.done)
}
