package services

import (
	"prospera/internal/models"
	"prospera/internal/repositories"
)

// slaEmailThresholdHours is the minimum stage SLA that warrants an email
// on entry. Shorter SLAs are telegram-only.
const slaEmailThresholdHours = 24

// EmailPipelineNotifier mails the opportunity owner on won/lost and when
// an opportunity enters a stage with a long SLA. Ordinary stage moves are
// too chatty for email and are left to telegram.
type EmailPipelineNotifier struct {
	emails EmailService
	users  repositories.UserRepository
}

func NewEmailPipelineNotifier(emails EmailService, users repositories.UserRepository) *EmailPipelineNotifier {
	return &EmailPipelineNotifier{emails: emails, users: users}
}

func (n *EmailPipelineNotifier) ownerEmail(opp *models.Opportunity) (string, error) {
	user, err := n.users.GetByID(int(opp.OwnerID))
	if err != nil || user == nil {
		return "", err
	}
	return user.Email, nil
}

func (n *EmailPipelineNotifier) StageChanged(opp *models.Opportunity, from, to models.FunnelStage) error {
	if to.SLAHours == nil || *to.SLAHours < slaEmailThresholdHours {
		return nil
	}
	email, err := n.ownerEmail(opp)
	if err != nil || email == "" {
		return err
	}
	return n.emails.SendStageSLAEmail(email, opp, to)
}

func (n *EmailPipelineNotifier) OpportunityWon(opp *models.Opportunity, cascade *models.Opportunity) error {
	email, err := n.ownerEmail(opp)
	if err != nil || email == "" {
		return err
	}
	return n.emails.SendOpportunityWonEmail(email, opp)
}

func (n *EmailPipelineNotifier) OpportunityLost(opp *models.Opportunity, reason *models.LostReason) error {
	email, err := n.ownerEmail(opp)
	if err != nil || email == "" {
		return err
	}
	return n.emails.SendOpportunityLostEmail(email, opp, reason)
}
