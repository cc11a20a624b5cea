package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"prospera/internal/models"
)

func oppEnteredAt(entered time.Time) *models.Opportunity {
	return &models.Opportunity{
		ID:             1,
		Status:         models.OpportunityActive,
		StageEnteredAt: entered,
	}
}

func TestEvaluateSLANoSLAConfigured(t *testing.T) {
	stage := models.FunnelStage{ID: 1}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for _, elapsed := range []time.Duration{-time.Hour, 0, time.Hour, 1000 * time.Hour} {
		opp := oppEnteredAt(now.Add(-elapsed))
		assert.Equal(t, SLANone, EvaluateSLA(opp, stage, now), "elapsed %s", elapsed)
	}
}

func TestEvaluateSLAThresholds(t *testing.T) {
	stage := models.FunnelStage{ID: 1, SLAHours: fptr(48)}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		elapsed time.Duration
		want    SLAHealth
	}{
		{"fresh", 0, SLAOK},
		{"well within", 24 * time.Hour, SLAOK},
		{"just below warning", 38 * time.Hour, SLAOK},
		{"past warning", 40 * time.Hour, SLAWarning},
		{"at the limit", 48 * time.Hour, SLAWarning},
		{"just over", 48*time.Hour + time.Minute, SLAOverdue},
		{"long over", 200 * time.Hour, SLAOverdue},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opp := oppEnteredAt(now.Add(-tc.elapsed))
			assert.Equal(t, tc.want, EvaluateSLA(opp, stage, now))
		})
	}
}

func TestEvaluateSLAFutureEntryCountsAsZero(t *testing.T) {
	stage := models.FunnelStage{ID: 1, SLAHours: fptr(1)}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// clock skew: entered "in the future"
	opp := oppEnteredAt(now.Add(3 * time.Hour))
	assert.Equal(t, SLAOK, EvaluateSLA(opp, stage, now))
}

func TestEvaluateSLAMonotonic(t *testing.T) {
	stage := models.FunnelStage{ID: 1, SLAHours: fptr(10)}
	entered := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	opp := oppEnteredAt(entered)

	rank := map[SLAHealth]int{SLAOK: 0, SLAWarning: 1, SLAOverdue: 2}
	prev := SLAOK
	for h := 0; h <= 20; h++ {
		got := EvaluateSLA(opp, stage, entered.Add(time.Duration(h)*time.Hour))
		assert.GreaterOrEqual(t, rank[got], rank[prev], "health must not improve as time passes (hour %d)", h)
		prev = got
	}
}
