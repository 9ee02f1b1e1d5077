// Package service contains background jobs and outbound integrations
package service

import (
	"errors"
	"fmt"

	"linkly/link-api/model"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer delivers account verification mail. Abstracted so tests and
// mail-less dev setups don't need an SMTP server.
type Mailer interface {
	SendVerificationMail(t *model.VerificationToken, sendTo string) error
}

// NewMailer picks the SMTP mailer or the log-only fallback depending on
// mail.enabled.
func NewMailer() Mailer {
	if viper.GetBool("mail.enabled") {
		return &SMTPMailer{}
	}

	return &LogMailer{}
}

type SMTPMailer struct{}

func (m *SMTPMailer) SendVerificationMail(t *model.VerificationToken, sendTo string) error {
	from := viper.GetString("mail.sender_address")
	if sendTo == from {
		return errors.New("invalid email address")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", sendTo)
	msg.SetHeader("Subject", "Verify your email to start using linkly")
	msg.SetBody("text/html", fmt.Sprintf("Click <a href='%v'>here</a> to verify your account.\n\nThis link will expire in 30 minutes", verificationLink(t)))

	d := gomail.NewDialer(
		viper.GetString("mail.host"),
		viper.GetInt("mail.port"),
		from,
		viper.GetString("mail.password"),
	)

	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send verification mail, %w", err)
	}

	return nil
}

// LogMailer only logs the verification link. Used when mail delivery is
// disabled so local accounts can still be verified by hand.
type LogMailer struct{}

func (m *LogMailer) SendVerificationMail(t *model.VerificationToken, sendTo string) error {
	zap.L().Info("Mail delivery disabled, verification link follows",
		zap.String("to", sendTo),
		zap.String("link", verificationLink(t)))

	return nil
}

func verificationLink(t *model.VerificationToken) string {
	scheme := "http"
	if viper.GetBool("host.ssl.enabled") {
		scheme = "https"
	}

	return fmt.Sprintf("%v://%v/verify?user_id=%v&token=%v",
		scheme, viper.GetString("host.domain"), t.UserID, t.Token)
}
