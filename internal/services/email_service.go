package services

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type EmailService interface {
	SendOTPEmail(email, username, code string, ttlMinutes int) error
	SendCredentialsEmail(email, username, password string) error
	SendPasswordResetEmail(email, token string) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		dialer: dialer,
		from:   fromEmail,
	}
}

func (s *emailService) SendOTPEmail(email, username, code string, ttlMinutes int) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Your OTP Code")

	body := fmt.Sprintf(`
		<p>Hello %s,</p>
		<p>Your OTP code for logging in is: <strong>%s</strong></p>
		<p>It will expire in %d minutes.</p>
		<p>If you did not try to log in, you can ignore this email.</p>
	`, username, code, ttlMinutes)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send otp email: %w", err)
	}

	return nil
}

func (s *emailService) SendCredentialsEmail(email, username, password string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Your account credentials")

	body := fmt.Sprintf(`
		<p>Hello %s,</p>
		<p>Your account has been created successfully.</p>
		<p>Username: <strong>%s</strong><br>Password: <strong>%s</strong></p>
		<p>Please login to access your account.</p>
	`, username, username, password)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send credentials email: %w", err)
	}

	return nil
}

func (s *emailService) SendPasswordResetEmail(email, token string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Password reset request")

	body := fmt.Sprintf(`
		<h3>Password reset requested</h3>
		<p>We received a request to reset the password for your account.</p>
		<p>Use the following token to reset your password: <strong>%s</strong></p>
		<p>If you did not request this change, you can ignore this email.</p>
	`, token)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}

	return nil
}
