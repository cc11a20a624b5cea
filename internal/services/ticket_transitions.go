package services

import "prospera/internal/models"

// Allowed ticket status transitions. Reopening goes through "open" from
// either resolved or closed.
var TicketTransitions = map[models.TicketStatus]map[models.TicketStatus]bool{
	models.TicketOpen:       {models.TicketInProgress: true, models.TicketClosed: true},
	models.TicketInProgress: {models.TicketResolved: true, models.TicketOpen: true, models.TicketClosed: true},
	models.TicketResolved:   {models.TicketClosed: true, models.TicketOpen: true},
	models.TicketClosed:     {models.TicketOpen: true},
}

func canTicketTransition(current, to models.TicketStatus) bool {
	if current == "" {
		// nothing recorded yet, allow any starting status
		return true
	}
	nexts, ok := TicketTransitions[current]
	if !ok {
		return false
	}
	return nexts[to]
}
