package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prospera/internal/repositories"
)

type fakeWinLoss struct {
	rows []repositories.WinLossRow
}

func (f *fakeWinLoss) WinLoss(_ context.Context, from, to time.Time) ([]repositories.WinLossRow, error) {
	return f.rows, nil
}

func newTestReportService(store *fakeStore, funnels *fakeFunnels, winLoss WinLossStore) *ReportService {
	svc := NewReportService(store, funnels, winLoss)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }
	return svc
}

func TestPipelineSummaryAggregatesByStage(t *testing.T) {
	store, funnels, reasons := testFixture()
	oppSvc := newTestService(store, funnels, reasons)

	a := mustCreate(t, oppSvc)
	b := mustCreate(t, oppSvc)
	_, err := oppSvc.SetProposalValue(context.Background(), a.ID, fval(1000))
	require.NoError(t, err)
	_, err = oppSvc.SetProposalValue(context.Background(), b.ID, fval(500))
	require.NoError(t, err)

	// age one past the 48h SLA of stage 1
	store.opps[b.ID].StageEnteredAt = oppSvc.now().Add(-72 * time.Hour)

	svc := newTestReportService(store, funnels, &fakeWinLoss{})
	summary, err := svc.PipelineSummary(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, summary.Stages, 4)

	first := summary.Stages[0]
	assert.Equal(t, int64(1), first.Stage.ID)
	assert.Equal(t, 2, first.Count)
	assert.Equal(t, 1500.0, first.TotalValue)
	assert.Equal(t, 1, first.Overdue)

	for _, cell := range summary.Stages[1:] {
		assert.Zero(t, cell.Count)
	}
}

func TestPipelineSummaryUnknownFunnel(t *testing.T) {
	store, funnels, _ := testFixture()
	svc := newTestReportService(store, funnels, &fakeWinLoss{})

	_, err := svc.PipelineSummary(context.Background(), 99)
	require.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestWinLossRejectsInvertedRange(t *testing.T) {
	store, funnels, _ := testFixture()
	svc := newTestReportService(store, funnels, &fakeWinLoss{})

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.WinLoss(context.Background(), from, from)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}
