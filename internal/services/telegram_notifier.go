package services

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"prospera/internal/models"
)

// TelegramNotifier pushes pipeline events to the team's chat. A nil
// notifier or zero chat id silently drops everything, so the wiring can
// stay unconditional.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramNotifier(botToken string, chatID int64) (*TelegramNotifier, error) {
	if botToken == "" || chatID == 0 {
		return nil, nil
	}
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("telegram notifier: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

func (n *TelegramNotifier) send(text string) error {
	if n == nil || n.bot == nil {
		return nil
	}
	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	_, err := n.bot.Send(msg)
	return err
}

func (n *TelegramNotifier) StageChanged(opp *models.Opportunity, from, to models.FunnelStage) error {
	text := fmt.Sprintf("Opportunity <b>#%d</b> moved: %s → %s", opp.ID, from.Name, to.Name)
	if to.SLAHours != nil {
		text += fmt.Sprintf("\nSLA for this stage: %.0fh", *to.SLAHours)
	}
	return n.send(text)
}

func (n *TelegramNotifier) OpportunityWon(opp *models.Opportunity, cascade *models.Opportunity) error {
	text := fmt.Sprintf("Opportunity <b>#%d</b> won", opp.ID)
	if opp.ProposalValue != nil {
		text += fmt.Sprintf(" (%.2f)", *opp.ProposalValue)
	}
	if cascade != nil {
		text += fmt.Sprintf("\nFollow-on opportunity #%d opened in the next funnel", cascade.ID)
	}
	return n.send(text)
}

func (n *TelegramNotifier) OpportunityLost(opp *models.Opportunity, reason *models.LostReason) error {
	label := "unspecified"
	if reason != nil {
		label = reason.Label
	}
	return n.send(fmt.Sprintf("Opportunity <b>#%d</b> lost: %s", opp.ID, label))
}
