package services

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"prospera/internal/models"
)

type EmailService interface {
	SendWelcomeEmail(email, name string) error
	SendOpportunityWonEmail(email string, opp *models.Opportunity) error
	SendOpportunityLostEmail(email string, opp *models.Opportunity, reason *models.LostReason) error
	SendStageSLAEmail(email string, opp *models.Opportunity, stage models.FunnelStage) error
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

func (s *emailService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)
	return s.dialer.DialAndSend(m)
}

func (s *emailService) SendWelcomeEmail(email, name string) error {
	body := fmt.Sprintf(`
		<h2>Welcome to Prospera, %s!</h2>
		<p>Your account has been created. You can now sign in and work your pipeline.</p>
		<p>Best regards,<br>The Prospera Team</p>
	`, name)

	if err := s.send(email, "Welcome to Prospera!", body); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}
	return nil
}

func (s *emailService) SendOpportunityWonEmail(email string, opp *models.Opportunity) error {
	value := "n/a"
	if opp.ProposalValue != nil {
		value = fmt.Sprintf("%.2f", *opp.ProposalValue)
	}
	body := fmt.Sprintf(`
		<h3>Opportunity #%d won</h3>
		<p>Congratulations, the opportunity was closed as won.</p>
		<p>Proposal value: <strong>%s</strong></p>
	`, opp.ID, value)

	if err := s.send(email, fmt.Sprintf("Opportunity #%d won", opp.ID), body); err != nil {
		return fmt.Errorf("failed to send won email: %w", err)
	}
	return nil
}

func (s *emailService) SendOpportunityLostEmail(email string, opp *models.Opportunity, reason *models.LostReason) error {
	label := ""
	if reason != nil {
		label = reason.Label
	}
	body := fmt.Sprintf(`
		<h3>Opportunity #%d lost</h3>
		<p>The opportunity was marked as lost.</p>
		<p>Reason: <strong>%s</strong></p>
		<p>It remains on record and can be reactivated from the pipeline view.</p>
	`, opp.ID, label)

	if err := s.send(email, fmt.Sprintf("Opportunity #%d lost", opp.ID), body); err != nil {
		return fmt.Errorf("failed to send lost email: %w", err)
	}
	return nil
}

func (s *emailService) SendStageSLAEmail(email string, opp *models.Opportunity, stage models.FunnelStage) error {
	hours := 0.0
	if stage.SLAHours != nil {
		hours = *stage.SLAHours
	}
	body := fmt.Sprintf(`
		<h3>Opportunity #%d entered "%s"</h3>
		<p>This stage carries an SLA of %.0f hours. The clock started now.</p>
	`, opp.ID, stage.Name, hours)

	if err := s.send(email, fmt.Sprintf("Opportunity #%d: SLA stage entered", opp.ID), body); err != nil {
		return fmt.Errorf("failed to send sla email: %w", err)
	}
	return nil
}
