package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendCustomerSaved(toEmail, customerRef string, feePerMonth float64, currency string) error
	SendPaymentsFailing(toEmail, customerRef, invoiceRef string, amountAtRisk int64, currency string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	clientURL   string
}

func NewEmailService(host string, port int, username, password, senderEmail, clientURL string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		clientURL:   clientURL,
	}
}

func (s *emailService) SendCustomerSaved(toEmail, customerRef string, feePerMonth float64, currency string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "A customer just accepted your retention offer")

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Customer saved!</h2>
			<p>Customer <strong>%s</strong> accepted a retention offer instead of cancelling.</p>
			<p>Monthly service fee for this save: <strong>%.2f %s</strong></p>
			<a href="%s/saves" style="background-color: #007BFF; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">View Details</a>
		</div>
	`, customerRef, feePerMonth, currency, s.clientURL)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send saved notice to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Saved notice sent to %s\n", toEmail)
	return nil
}

func (s *emailService) SendPaymentsFailing(toEmail, customerRef, invoiceRef string, amountAtRisk int64, currency string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Payment failing: revenue at risk")

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>A payment is failing</h2>
			<p>Customer <strong>%s</strong> has a failed invoice (<code>%s</code>).</p>
			<p>Amount at risk: <strong>%.2f %s</strong></p>
			<p>You have 48 hours to act before the recovery window closes.</p>
			<a href="%s/recovery" style="background-color: #DC3545; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Open Recovery Inbox</a>
		</div>
	`, customerRef, invoiceRef, float64(amountAtRisk)/100, currency, s.clientURL)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send payment-failing notice to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Payment-failing notice sent to %s\n", toEmail)
	return nil
}
