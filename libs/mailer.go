package libs

import (
	"errors"
	"fmt"
	"html/template"
	"strings"

	"food-ordering/models"

	"gopkg.in/gomail.v2"
)

type MailConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// Mailer sends order confirmations over SMTP.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(cfg MailConfig) (*Mailer, error) {
	if cfg.Host == "" || cfg.User == "" || cfg.Pass == "" {
		return nil, errors.New("SMTP configuration missing")
	}
	port := cfg.Port
	if port == 0 {
		port = 587
	}
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, port, cfg.User, cfg.Pass),
		from:   cfg.From,
	}, nil
}

var confirmationTemplate = template.Must(template.New("confirmation").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
    <h2>Thanks for your order, {{.Address.FirstName}}!</h2>
    <p>Order <strong>{{.ID}}</strong> is now: {{.Status}}</p>
    <table cellpadding="4">
    {{range .Items}}<tr><td>{{.Name}}</td><td>x{{.Quantity}}</td><td>{{.Price}}</td></tr>
    {{end}}</table>
    <p><strong>Total: {{.Amount}} {{.Currency}}</strong></p>
    <p style="color: #666; font-size: 12px;">This is an automated email. Please do not reply.</p>
</body>
</html>`))

// RenderConfirmation returns the HTML body of the confirmation email.
func RenderConfirmation(order models.Order) (string, error) {
	var sb strings.Builder
	if err := confirmationTemplate.Execute(&sb, order); err != nil {
		return "", fmt.Errorf("render confirmation: %w", err)
	}
	return sb.String(), nil
}

func (m *Mailer) SendOrderConfirmation(order models.Order) error {
	body, err := RenderConfirmation(order)
	if err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", order.Address.Email)
	msg.SetHeader("Subject", "Order confirmed - "+order.ID)
	msg.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send confirmation: %w", err)
	}
	return nil
}
