package pipeline

import (
	"time"

	"prospera/internal/models"
)

// SLAHealth is the advisory dwell-time signal for an opportunity in its
// current stage. It never blocks a transition.
type SLAHealth string

const (
	// SLANone means the stage has no SLA configured.
	SLANone    SLAHealth = ""
	SLAOK      SLAHealth = "ok"
	SLAWarning SLAHealth = "warning"
	SLAOverdue SLAHealth = "overdue"
)

// warningRatio is the share of the SLA after which a stage turns amber.
const warningRatio = 0.8

// EvaluateSLA computes the health of opp's dwell time in stage at the
// given instant. The clock is an explicit parameter so callers can
// evaluate fixed timestamps; the function is pure and recomputed on every
// poll. Entry timestamps in the future (clock skew) count as zero elapsed.
func EvaluateSLA(opp *models.Opportunity, stage models.FunnelStage, now time.Time) SLAHealth {
	if stage.SLAHours == nil {
		return SLANone
	}
	elapsed := now.Sub(opp.StageEnteredAt).Hours()
	if elapsed < 0 {
		elapsed = 0
	}
	sla := *stage.SLAHours
	switch {
	case elapsed > sla:
		return SLAOverdue
	case elapsed > warningRatio*sla:
		return SLAWarning
	default:
		return SLAOK
	}
}
