package mailrepo

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type Sender interface {
	SendVerificationCode(to, code string) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpSender struct{ cfg SMTPConfig }

func NewSMTP(cfg SMTPConfig) Sender { return &smtpSender{cfg: cfg} }

func (s *smtpSender) SendVerificationCode(to, code string) error {
	if s.cfg.Host == "" || s.cfg.From == "" {
		return fmt.Errorf("smtp not configured")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Your CampusShare verification code")
	m.SetBody("text/html", fmt.Sprintf(
		"<p>Your verification code is <b>%s</b>.</p><p>It expires in 15 minutes.</p>", code))

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
