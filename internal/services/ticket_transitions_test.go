package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"prospera/internal/models"
)

func TestCanTicketTransition(t *testing.T) {
	cases := []struct {
		from models.TicketStatus
		to   models.TicketStatus
		want bool
	}{
		{models.TicketOpen, models.TicketInProgress, true},
		{models.TicketOpen, models.TicketClosed, true},
		{models.TicketOpen, models.TicketResolved, false},

		{models.TicketInProgress, models.TicketResolved, true},
		{models.TicketInProgress, models.TicketOpen, true},
		{models.TicketInProgress, models.TicketClosed, true},

		{models.TicketResolved, models.TicketClosed, true},
		{models.TicketResolved, models.TicketOpen, true},
		{models.TicketResolved, models.TicketInProgress, false},

		{models.TicketClosed, models.TicketOpen, true},
		{models.TicketClosed, models.TicketInProgress, false},
		{models.TicketClosed, models.TicketResolved, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, canTicketTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestCanTicketTransitionEmptyCurrent(t *testing.T) {
	// a brand-new ticket may start in any status
	for _, to := range []models.TicketStatus{models.TicketOpen, models.TicketInProgress, models.TicketResolved, models.TicketClosed} {
		assert.True(t, canTicketTransition("", to))
	}
}

func TestCanTicketTransitionUnknownStatus(t *testing.T) {
	assert.False(t, canTicketTransition("archived", models.TicketOpen))
}
