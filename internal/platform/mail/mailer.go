package mail

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Mailer dispatches transactional mail. Failures are reported to the
// caller but must never crash the triggering request.
type Mailer interface {
	Send(to, subject, body string) error
}

type smtpMailer struct {
	dialer   *gomail.Dialer
	fromName string
	fromAddr string
}

func NewSMTPMailer(host string, port int, user, password, fromName, fromAddr string) Mailer {
	return &smtpMailer{
		dialer:   gomail.NewDialer(host, port, user, password),
		fromName: fromName,
		fromAddr: fromAddr,
	}
}

func (m *smtpMailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", fmt.Sprintf("%s <%s>", m.fromName, m.fromAddr))
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return m.dialer.DialAndSend(msg)
}
