package services

import (
	"fmt"
	"html"
	"time"

	"github.com/sony/gobreaker"
	"gopkg.in/gomail.v2"
)

type EmailService interface {
	SendWelcomeEmail(email, name string) error
	SendNoticeEmail(to []string, text string) error
}

// mailDialer is satisfied by *gomail.Dialer.
type mailDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailService struct {
	dialer  mailDialer
	from    string
	breaker *gobreaker.CircuitBreaker
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	return newEmailService(gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword), fromEmail)
}

func newEmailService(d mailDialer, from string) *emailService {
	return &emailService{
		dialer:  d,
		from:    from,
		breaker: newBreaker("smtp-cb", 30*time.Second),
	}
}

func (s *emailService) SendWelcomeEmail(email, name string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Welcome to Task Manager")

	body := fmt.Sprintf(`
		<h2>Welcome, %s!</h2>
		<p>Your account has been created. You can now sign in and pick up your tasks.</p>
	`, html.EscapeString(name))
	m.SetBody("text/html", body)

	if err := s.send(m); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}
	return nil
}

func (s *emailService) SendNoticeEmail(to []string, text string) error {
	if len(to) == 0 {
		return nil
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	// получатели скрыты друг от друга
	m.SetHeader("To", s.from)
	m.SetHeader("Bcc", to...)
	m.SetHeader("Subject", "New task notification")
	m.SetBody("text/plain", text)

	if err := s.send(m); err != nil {
		return fmt.Errorf("failed to send notice email: %w", err)
	}
	return nil
}

func (s *emailService) send(m *gomail.Message) error {
	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.dialer.DialAndSend(m)
	})
	return err
}
