package smtp

import (
	"fmt"
	"time"

	"github.com/go-auth-gate/internal/config"
	"github.com/go-auth-gate/internal/domain"
	"gopkg.in/gomail.v2"
)

// Mailer delivers verification codes by email.
type Mailer interface {
	SendVerificationCode(to, code string, flow domain.Flow) error
}

type mailer struct {
	dialer  *gomail.Dialer
	from    string
	codeTTL time.Duration
}

func NewMailer(cfg *config.Config) Mailer {
	return &mailer{
		dialer:  gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		from:    cfg.SMTPFrom,
		codeTTL: cfg.CodeTTL,
	}
}

// ttlPhrase renders the validity window for the email body.
func ttlPhrase(d time.Duration) string {
	if d >= time.Minute {
		return fmt.Sprintf("%d minutes", int(d.Round(time.Minute).Minutes()))
	}
	return fmt.Sprintf("%d seconds", int(d.Seconds()))
}

func (m *mailer) SendVerificationCode(to, code string, flow domain.Flow) error {
	intro := "Here is your code to sign in:"
	if flow == domain.FlowSignup {
		intro = "Here is your code to finish creating your account:"
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", fmt.Sprintf("Your verification code: %s", code))
	msg.SetBody("text/html", fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
			<h2>Security verification</h2>
			<p>%s</p>
			<div style="font-size: 36px; font-weight: bold; letter-spacing: 8px; padding: 20px 0;">%s</div>
			<p>This code expires in %s.</p>
			<p style="color: #888; font-size: 12px;">If you did not request this code, you can ignore this email.</p>
		</div>
	`, intro, code, ttlPhrase(m.codeTTL)))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}
	return nil
}
