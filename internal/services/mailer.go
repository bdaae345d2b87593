package services

import (
	"fmt"
	"log"
	"net/smtp"

	"github.com/hptiles/tilebill/internal/config"
)

// Mailer sends transactional mail. With no SMTP host configured it logs the
// message instead, which is what development and the test suite rely on.
type Mailer struct {
	cfg config.Config
}

func NewMailer(cfg config.Config) *Mailer { return &Mailer{cfg: cfg} }

// SendOTP delivers the registration one-time code.
func (m *Mailer) SendOTP(to, code string) error {
	subject := "Your verification code"
	body := fmt.Sprintf("Your one-time verification code is %s. It expires in 10 minutes.", code)
	if m.cfg.SMTPHost == "" {
		log.Printf("[mail] SMTP not configured; OTP for %s: %s", to, code)
		return nil
	}
	msg := []byte("From: " + m.cfg.SMTPFrom + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" + body + "\r\n")
	auth := smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPassword, m.cfg.SMTPHost)
	addr := m.cfg.SMTPHost + ":" + m.cfg.SMTPPort
	if err := smtp.SendMail(addr, auth, m.cfg.SMTPFrom, []string{to}, msg); err != nil {
		return fmt.Errorf("send otp mail: %w", err)
	}
	return nil
}
