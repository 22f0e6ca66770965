package service

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strings"
)

// SMTPEmailSender delivers tokens over plain SMTP. It satisfies EmailSender.
type SMTPEmailSender struct {
	host     string
	port     string
	username string
	password string
	from     string
	baseURL  string
}

func NewSMTPEmailSender(host, port, username, password, from, baseURL string) *SMTPEmailSender {
	return &SMTPEmailSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

func (s *SMTPEmailSender) SendResetPasswordEmail(ctx context.Context, to string, resetToken string) error {
	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.baseURL, resetToken)
	body := fmt.Sprintf(`Dear user,
To reset your password, click on this link: %s
If you did not request any password resets, then ignore this email.`, resetURL)

	return s.send(ctx, to, "Reset password", body)
}

func (s *SMTPEmailSender) SendVerificationEmail(ctx context.Context, to string, verifyToken string) error {
	verifyURL := fmt.Sprintf("%s/verify-email?token=%s", s.baseURL, verifyToken)
	body := fmt.Sprintf(`Dear user,
To verify your email, click on this link: %s
If you did not create an account, then ignore this email.`, verifyURL)

	return s.send(ctx, to, "Email Verification", body)
}

func (s *SMTPEmailSender) send(ctx context.Context, to string, subject string, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := strings.Join([]string{
		"From: " + s.from,
		"To: " + to,
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	addr := net.JoinHostPort(s.host, s.port)

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	if err := smtp.SendMail(addr, auth, s.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	slog.Info("email sent", "to", to, "subject", subject)
	return nil
}
