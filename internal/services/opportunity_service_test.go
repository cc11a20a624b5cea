package services

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prospera/internal/models"
	"prospera/internal/pipeline"
	"prospera/internal/repositories"
)

// ---- in-memory fakes reproducing the store's compare-and-swap semantics ----

type fakeStore struct {
	opps    map[int64]*models.Opportunity
	history []models.OpportunityHistoryEntry
	nextID  int64
	histID  int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{opps: map[int64]*models.Opportunity{}, nextID: 1}
}

func (f *fakeStore) appendHistory(e models.OpportunityHistoryEntry) {
	f.histID++
	e.ID = f.histID
	f.history = append(f.history, e)
}

func (f *fakeStore) historyFor(id int64) []models.OpportunityHistoryEntry {
	var out []models.OpportunityHistoryEntry
	for _, e := range f.history {
		if e.OpportunityID == id {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeStore) Create(_ context.Context, o *models.Opportunity, actorID int64) error {
	o.ID = f.nextID
	f.nextID++
	cp := *o
	f.opps[o.ID] = &cp
	f.appendHistory(models.OpportunityHistoryEntry{
		OpportunityID: o.ID,
		Action:        models.HistoryCreated,
		ActorID:       actorID,
		CreatedAt:     o.CreatedAt,
	})
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (*models.Opportunity, error) {
	o, ok := f.opps[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (f *fakeStore) List(_ context.Context, filter models.OpportunityFilter, limit, offset int) ([]*models.Opportunity, error) {
	var out []*models.Opportunity
	for _, o := range f.opps {
		if filter.FunnelID != nil && o.CurrentFunnelID != *filter.FunnelID {
			continue
		}
		if filter.StageID != nil && o.CurrentStageID != *filter.StageID {
			continue
		}
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		cp := *o
		out = append(out, &cp)
	}
	// stable order, like the SQL ORDER BY, so offset paging works
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) MoveStage(_ context.Context, id, fromStageID, toStageID int64, enteredAt time.Time, proposalValue *float64, actorID int64) (*models.Opportunity, error) {
	o, ok := f.opps[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	// the CAS condition of the SQL update
	if o.CurrentStageID != fromStageID || o.Status != models.OpportunityActive {
		return nil, repositories.ErrConflict
	}
	o.CurrentStageID = toStageID
	o.StageEnteredAt = enteredAt
	o.UpdatedAt = enteredAt
	if proposalValue != nil {
		o.ProposalValue = proposalValue
	}
	f.appendHistory(models.OpportunityHistoryEntry{
		OpportunityID: id,
		Action:        models.HistoryStageChange,
		FromStageID:   &fromStageID,
		ToStageID:     &toStageID,
		ActorID:       actorID,
		CreatedAt:     enteredAt,
	})
	cp := *o
	return &cp, nil
}

func (f *fakeStore) MarkLost(_ context.Context, id, reasonID int64, lostAt time.Time, notes string, actorID int64) (*models.Opportunity, error) {
	o, ok := f.opps[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if o.Status != models.OpportunityActive {
		return nil, repositories.ErrConflict
	}
	o.Status = models.OpportunityLost
	o.LostReasonID = &reasonID
	o.LostAt = &lostAt
	o.UpdatedAt = lostAt
	f.appendHistory(models.OpportunityHistoryEntry{
		OpportunityID: id,
		Action:        models.HistoryLost,
		ActorID:       actorID,
		Notes:         notes,
		CreatedAt:     lostAt,
	})
	cp := *o
	return &cp, nil
}

func (f *fakeStore) MarkWon(_ context.Context, id int64, wonAt time.Time, actorID int64, cascade *models.Opportunity) (*models.Opportunity, error) {
	o, ok := f.opps[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if o.Status != models.OpportunityActive {
		return nil, repositories.ErrConflict
	}
	o.Status = models.OpportunityWon
	o.WonAt = &wonAt
	o.UpdatedAt = wonAt
	f.appendHistory(models.OpportunityHistoryEntry{
		OpportunityID: id,
		Action:        models.HistoryWon,
		ActorID:       actorID,
		CreatedAt:     wonAt,
	})
	if cascade != nil {
		cascade.ID = f.nextID
		f.nextID++
		cp := *cascade
		f.opps[cascade.ID] = &cp
		f.appendHistory(models.OpportunityHistoryEntry{
			OpportunityID: cascade.ID,
			Action:        models.HistoryCreated,
			ActorID:       actorID,
			CreatedAt:     wonAt,
		})
	}
	cp := *o
	return &cp, nil
}

func (f *fakeStore) Reactivate(_ context.Context, id, stageID int64, enteredAt time.Time, actorID int64) (*models.Opportunity, error) {
	o, ok := f.opps[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if o.Status != models.OpportunityLost {
		return nil, repositories.ErrConflict
	}
	o.Status = models.OpportunityActive
	o.CurrentStageID = stageID
	o.StageEnteredAt = enteredAt
	o.UpdatedAt = enteredAt
	o.LostReasonID = nil
	o.LostAt = nil
	f.appendHistory(models.OpportunityHistoryEntry{
		OpportunityID: id,
		Action:        models.HistoryReactivated,
		ToStageID:     &stageID,
		ActorID:       actorID,
		CreatedAt:     enteredAt,
	})
	cp := *o
	return &cp, nil
}

func (f *fakeStore) UpdateProposalValue(_ context.Context, id, fromStageID int64, value *float64, now time.Time) error {
	o, ok := f.opps[id]
	if !ok {
		return repositories.ErrNotFound
	}
	// the CAS condition of the SQL update
	if o.CurrentStageID != fromStageID || o.Status != models.OpportunityActive {
		return repositories.ErrConflict
	}
	o.ProposalValue = value
	o.UpdatedAt = now
	return nil
}

func (f *fakeStore) UpdateNotes(_ context.Context, id int64, notes string, now time.Time) error {
	o, ok := f.opps[id]
	if !ok {
		return repositories.ErrNotFound
	}
	o.Notes = notes
	o.UpdatedAt = now
	return nil
}

func (f *fakeStore) ListByOpportunity(_ context.Context, opportunityID int64) ([]models.OpportunityHistoryEntry, error) {
	return f.historyFor(opportunityID), nil
}

type fakeFunnels struct {
	funnels map[int64]*models.Funnel
	stages  map[int64][]models.FunnelStage
}

func (f *fakeFunnels) GetByID(_ context.Context, id int64) (*models.Funnel, error) {
	fn, ok := f.funnels[id]
	if !ok {
		return nil, nil
	}
	return fn, nil
}

func (f *fakeFunnels) GetStages(_ context.Context, funnelID int64) ([]models.FunnelStage, error) {
	return f.stages[funnelID], nil
}

func (f *fakeFunnels) NextFunnelFirstStage(_ context.Context, funnelID int64) (*models.Funnel, *models.FunnelStage, error) {
	fn, ok := f.funnels[funnelID]
	if !ok || fn.NextFunnelID == nil {
		return nil, nil, nil
	}
	next, ok := f.funnels[*fn.NextFunnelID]
	if !ok {
		return nil, nil, nil
	}
	stages := f.stages[next.ID]
	if len(stages) == 0 {
		return nil, nil, nil
	}
	return next, &stages[0], nil
}

type fakeReasons struct {
	reasons map[int64]*models.LostReason
}

func (f *fakeReasons) GetByID(id int64) (*models.LostReason, error) {
	return f.reasons[id], nil
}

type recordingNotifier struct {
	stageChanges int
	wins         int
	losses       int
	err          error
}

func (n *recordingNotifier) StageChanged(*models.Opportunity, models.FunnelStage, models.FunnelStage) error {
	n.stageChanges++
	return n.err
}

func (n *recordingNotifier) OpportunityWon(*models.Opportunity, *models.Opportunity) error {
	n.wins++
	return n.err
}

func (n *recordingNotifier) OpportunityLost(*models.Opportunity, *models.LostReason) error {
	n.losses++
	return n.err
}

// raceFunnels fires fn once, from inside GetStages, to land a competing
// write between a caller's read and its update.
type raceFunnels struct {
	*fakeFunnels
	fired bool
	fn    func()
}

func (r *raceFunnels) GetStages(ctx context.Context, funnelID int64) ([]models.FunnelStage, error) {
	stages, err := r.fakeFunnels.GetStages(ctx, funnelID)
	if !r.fired {
		r.fired = true
		r.fn()
	}
	return stages, err
}

// ---- fixtures ----

func fval(f float64) *float64 { return &f }
func iptr(i int64) *int64     { return &i }

func testFixture() (*fakeStore, *fakeFunnels, *fakeReasons) {
	store := newFakeStore()
	funnels := &fakeFunnels{
		funnels: map[int64]*models.Funnel{
			10: {ID: 10, Name: "Sales", NextFunnelID: iptr(20)},
			20: {ID: 20, Name: "Onboarding", GeneratesContract: true},
		},
		stages: map[int64][]models.FunnelStage{
			10: {
				{ID: 1, FunnelID: 10, Name: "New", OrderPosition: 1, SLAHours: fval(48)},
				{ID: 2, FunnelID: 10, Name: "Qualified", OrderPosition: 2},
				{ID: 3, FunnelID: 10, Name: "Proposal Sent", OrderPosition: 3, ProposalMilestone: true},
				{ID: 4, FunnelID: 10, Name: "Closing", OrderPosition: 4},
			},
			20: {
				{ID: 21, FunnelID: 20, Name: "Kickoff", OrderPosition: 1},
			},
		},
	}
	reasons := &fakeReasons{reasons: map[int64]*models.LostReason{
		7: {ID: 7, Label: "Price too high", Active: true},
	}}
	return store, funnels, reasons
}

func newTestService(store *fakeStore, funnels *fakeFunnels, reasons *fakeReasons, notifiers ...PipelineNotifier) *OpportunityService {
	svc := NewOpportunityService(store, funnels, store, reasons, notifiers...)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }
	return svc
}

func mustCreate(t *testing.T, svc *OpportunityService) *models.Opportunity {
	t.Helper()
	opp := &models.Opportunity{ContactID: 5, OwnerID: 2, CurrentFunnelID: 10}
	require.NoError(t, svc.Create(context.Background(), opp, 2))
	return opp
}

// ---- tests ----

func TestCreateOpensAtFirstStage(t *testing.T) {
	store, funnels, reasons := testFixture()
	svc := newTestService(store, funnels, reasons)

	opp := mustCreate(t, svc)
	assert.Equal(t, int64(1), opp.CurrentStageID)
	assert.Equal(t, models.OpportunityActive, opp.Status)

	hist := store.historyFor(opp.ID)
	require.Len(t, hist, 1)
	assert.Equal(t, models.HistoryCreated, hist[0].Action)
}

func TestCreateRequiresContactAndStages(t *testing.T) {
	store, funnels, reasons := testFixture()
	svc := newTestService(store, funnels, reasons)

	err := svc.Create(context.Background(), &models.Opportunity{CurrentFunnelID: 10}, 1)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "contact_id", verr.Field)

	err = svc.Create(context.Background(), &models.Opportunity{ContactID: 5, CurrentFunnelID: 99}, 1)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "funnel_id", verr.Field)
}

func TestMoveWritesExactlyOneHistoryRow(t *testing.T) {
	store, funnels, reasons := testFixture()
	notifier := &recordingNotifier{}
	svc := newTestService(store, funnels, reasons, notifier)
	opp := mustCreate(t, svc)

	moved, err := svc.Move(context.Background(), opp.ID, 1, 2, nil, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), moved.CurrentStageID)

	hist := store.historyFor(opp.ID)
	require.Len(t, hist, 2) // created + stage_change
	assert.Equal(t, models.HistoryStageChange, hist[1].Action)
	assert.Equal(t, int64(1), *hist[1].FromStageID)
	assert.Equal(t, int64(2), *hist[1].ToStageID)
	assert.Equal(t, 1, notifier.stageChanges)
}

func TestMoveStaleFromStageConflicts(t *testing.T) {
	store, funnels, reasons := testFixture()
	svc := newTestService(store, funnels, reasons)
	opp := mustCreate(t, svc)

	_, err := svc.Move(context.Background(), opp.ID, 1, 2, nil, 2)
	require.NoError(t, err)

	// a second submit of the same drag: the opportunity is no longer in stage 1
	_, err = svc.Move(context.Background(), opp.ID, 1, 2, nil, 2)
	require.ErrorIs(t, err, repositories.ErrConflict)

	// the losing request must not write a second stage_change row
	var changes int
	for _, e := range store.historyFor(opp.ID) {
		if e.Action == models.HistoryStageChange {
			changes++
		}
	}
	assert.Equal(t, 1, changes)
}

func TestMoveSameStageRejected(t *testing.T) {
	store, funnels, reasons := testFixture()
	svc := newTestService(store, funnels, reasons)
	opp := mustCreate(t, svc)

	_, err := svc.Move(context.Background(), opp.ID, 1, 1, nil, 2)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestMoveIntoMilestoneDemandsValue(t *testing.T) {
	store, funnels, reasons := testFixture()
	svc := newTestService(store, funnels, reasons)
	opp := mustCreate(t, svc)

	_, err := svc.Move(context.Background(), opp.ID, 1, 3, nil, 2)
	require.ErrorIs(t, err, ErrProposalValueRequired)

	// nothing persisted while the prompt is open
	current, err := svc.GetByID(context.Background(), opp.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), current.CurrentStageID)

	// resubmitting the whole move with the value succeeds
	moved, err := svc.Move(context.Background(), opp.ID, 1, 3, fval(12000), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), moved.CurrentStageID)
	require.NotNil(t, moved.ProposalValue)
	assert.Equal(t, 12000.0, *moved.ProposalValue)
}

func TestMoveRejectsNonPositiveValue(t *testing.T) {
	store, funnels, reasons := testFixture()
	svc := newTestService(store, funnels, reasons)
	opp := mustCreate(t, svc)

	_, err := svc.Move(context.Background(), opp.ID, 1, 3, fval(0), 2)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "proposal_value", verr.Field)
}

func TestCheckMoveHasNoSideEffects(t *testing.T) {
	store, funnels, reasons := testFixture()
	svc := newTestService(store, funnels, reasons)
	opp := mustCreate(t, svc)

	res, err := svc.CheckMove(context.Background(), opp.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, pipeline.TransitionNeedsProposalValue, res.Outcome)

	current, err := svc.GetByID(context.Background(), opp.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), current.CurrentStageID)
	assert.Len(t, store.historyFor(opp.ID), 1)
}

func TestSetProposalValueAppendOnlyAtMilestone(t *testing.T) {
	store, funnels, reasons := testFixture()
	svc := newTestService(store, funnels, reasons)
	opp := mustCreate(t, svc)

	// before the milestone the value can be set and cleared freely
	_, err := svc.SetProposalValue(context.Background(), opp.ID, fval(900))
	require.NoError(t, err)
	_, err = svc.SetProposalValue(context.Background(), opp.ID, nil)
	require.NoError(t, err)

	_, err = svc.Move(context.Background(), opp.ID, 1, 3, fval(900), 2)
	require.NoError(t, err)

	// at the milestone: replace yes, clear no
	updated, err := svc.SetProposalValue(context.Background(), opp.ID, fval(1500))
	require.NoError(t, err)
	assert.Equal(t, 1500.0, *updated.ProposalValue)

	_, err = svc.SetProposalValue(context.Background(), opp.ID, nil)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestSetProposalValueClearLosesRaceToMilestoneMove(t *testing.T) {
	store, funnels, reasons := testFixture()
	svc := newTestService(store, funnels, reasons)
	opp := mustCreate(t, svc)

	_, err := svc.Move(context.Background(), opp.ID, 1, 2, nil, 2)
	require.NoError(t, err)
	_, err = svc.SetProposalValue(context.Background(), opp.ID, fval(900))
	require.NoError(t, err)

	// a competing drag into the milestone stage commits between the
	// clear's read and its write
	raced := &raceFunnels{fakeFunnels: funnels, fn: func() {
		_, err := svc.Move(context.Background(), opp.ID, 2, 3, nil, 2)
		require.NoError(t, err)
	}}
	svcRaced := NewOpportunityService(store, raced, store, reasons)
	svcRaced.now = svc.now

	_, err = svcRaced.SetProposalValue(context.Background(), opp.ID, nil)
	require.ErrorIs(t, err, repositories.ErrConflict)

	current, err := svc.GetByID(context.Background(), opp.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), current.CurrentStageID)
	require.NotNil(t, current.ProposalValue, "value is append-only at the milestone and must survive the losing clear")
	assert.Equal(t, 900.0, *current.ProposalValue)
}

func TestMarkLostFreezesStage(t *testing.T) {
	store, funnels, reasons := testFixture()
	notifier := &recordingNotifier{}
	svc := newTestService(store, funnels, reasons, notifier)
	opp := mustCreate(t, svc)

	_, err := svc.Move(context.Background(), opp.ID, 1, 2, nil, 2)
	require.NoError(t, err)

	lost, err := svc.MarkLost(context.Background(), opp.ID, 7, "chose a competitor", 2)
	require.NoError(t, err)
	assert.Equal(t, models.OpportunityLost, lost.Status)
	assert.Equal(t, int64(2), lost.CurrentStageID, "stage frozen where it was lost")
	require.NotNil(t, lost.LostReasonID)
	assert.Equal(t, int64(7), *lost.LostReasonID)
	assert.NotNil(t, lost.LostAt)
	assert.Equal(t, 1, notifier.losses)

	// a lost opportunity cannot be stage-moved
	_, err = svc.Move(context.Background(), opp.ID, 2, 3, fval(100), 2)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestMarkLostUnknownReason(t *testing.T) {
	store, funnels, reasons := testFixture()
	svc := newTestService(store, funnels, reasons)
	opp := mustCreate(t, svc)

	_, err := svc.MarkLost(context.Background(), opp.ID, 999, "", 2)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "lost_reason_id", verr.Field)
}

func TestMarkWonCascadesIntoNextFunnel(t *testing.T) {
	store, funnels, reasons := testFixture()
	notifier := &recordingNotifier{}
	svc := newTestService(store, funnels, reasons, notifier)
	opp := mustCreate(t, svc)

	_, err := svc.SetProposalValue(context.Background(), opp.ID, fval(30000))
	require.NoError(t, err)

	won, cascade, err := svc.MarkWon(context.Background(), opp.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, models.OpportunityWon, won.Status)
	require.NotNil(t, won.WonAt, "closing time recorded for win/loss reporting")
	assert.Equal(t, svc.now(), *won.WonAt)

	require.NotNil(t, cascade)
	assert.Equal(t, int64(20), cascade.CurrentFunnelID)
	assert.Equal(t, int64(21), cascade.CurrentStageID)
	assert.Equal(t, opp.ContactID, cascade.ContactID)
	assert.Equal(t, opp.OwnerID, cascade.OwnerID)
	require.NotNil(t, cascade.ProposalValue)
	assert.Equal(t, 30000.0, *cascade.ProposalValue)
	assert.Equal(t, 1, notifier.wins)

	// cascade got its own created row
	hist := store.historyFor(cascade.ID)
	require.Len(t, hist, 1)
	assert.Equal(t, models.HistoryCreated, hist[0].Action)
}

func TestMarkWonWithoutSuccessor(t *testing.T) {
	store, funnels, reasons := testFixture()
	svc := newTestService(store, funnels, reasons)

	// put the opportunity in the terminal funnel, which has no successor
	opp := &models.Opportunity{ContactID: 5, OwnerID: 2, CurrentFunnelID: 20}
	require.NoError(t, svc.Create(context.Background(), opp, 2))

	won, cascade, err := svc.MarkWon(context.Background(), opp.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, models.OpportunityWon, won.Status)
	assert.Nil(t, cascade)
}

func TestMarkWonTwiceConflicts(t *testing.T) {
	store, funnels, reasons := testFixture()
	svc := newTestService(store, funnels, reasons)
	opp := mustCreate(t, svc)

	_, _, err := svc.MarkWon(context.Background(), opp.ID, 2)
	require.NoError(t, err)

	_, _, err = svc.MarkWon(context.Background(), opp.ID, 2)
	require.ErrorIs(t, err, repositories.ErrConflict)
}

func TestReactivateDefaultsToLostStage(t *testing.T) {
	store, funnels, reasons := testFixture()
	svc := newTestService(store, funnels, reasons)
	opp := mustCreate(t, svc)

	_, err := svc.Move(context.Background(), opp.ID, 1, 2, nil, 2)
	require.NoError(t, err)
	_, err = svc.MarkLost(context.Background(), opp.ID, 7, "", 2)
	require.NoError(t, err)

	back, err := svc.Reactivate(context.Background(), opp.ID, nil, 2)
	require.NoError(t, err)
	assert.Equal(t, models.OpportunityActive, back.Status)
	assert.Equal(t, int64(2), back.CurrentStageID)
	assert.Nil(t, back.LostReasonID)
	assert.Nil(t, back.LostAt)
}

func TestReactivateIntoChosenStage(t *testing.T) {
	store, funnels, reasons := testFixture()
	svc := newTestService(store, funnels, reasons)
	opp := mustCreate(t, svc)

	_, err := svc.MarkLost(context.Background(), opp.ID, 7, "", 2)
	require.NoError(t, err)

	back, err := svc.Reactivate(context.Background(), opp.ID, iptr(2), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), back.CurrentStageID)
}

func TestReactivateRejectsForeignStageAndActive(t *testing.T) {
	store, funnels, reasons := testFixture()
	svc := newTestService(store, funnels, reasons)
	opp := mustCreate(t, svc)

	var verr *ValidationError
	_, err := svc.Reactivate(context.Background(), opp.ID, nil, 2)
	require.ErrorAs(t, err, &verr, "active opportunities cannot be reactivated")

	_, err = svc.MarkLost(context.Background(), opp.ID, 7, "", 2)
	require.NoError(t, err)

	_, err = svc.Reactivate(context.Background(), opp.ID, iptr(99), 2)
	require.ErrorAs(t, err, &verr)
}

func TestNotifierFailureDoesNotFailMove(t *testing.T) {
	store, funnels, reasons := testFixture()
	notifier := &recordingNotifier{err: errors.New("smtp down")}
	svc := newTestService(store, funnels, reasons, notifier)
	opp := mustCreate(t, svc)

	moved, err := svc.Move(context.Background(), opp.ID, 1, 2, nil, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), moved.CurrentStageID)
	assert.Equal(t, 1, notifier.stageChanges)
}

func TestBoardGroupsByStageWithHealth(t *testing.T) {
	store, funnels, reasons := testFixture()
	svc := newTestService(store, funnels, reasons)

	fresh := mustCreate(t, svc)
	stale := mustCreate(t, svc)
	// stage 1 has a 48h SLA; age the second card past it
	store.opps[stale.ID].StageEnteredAt = svc.now().Add(-72 * time.Hour)

	columns, err := svc.Board(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, columns, 4)

	first := columns[0]
	assert.Equal(t, int64(1), first.Stage.ID)
	require.Len(t, first.Opportunities, 2)

	health := map[int64]pipeline.SLAHealth{}
	for _, card := range first.Opportunities {
		health[card.Opportunity.ID] = card.Health
	}
	assert.Equal(t, pipeline.SLAOK, health[fresh.ID])
	assert.Equal(t, pipeline.SLAOverdue, health[stale.ID])

	for _, col := range columns[1:] {
		assert.Empty(t, col.Opportunities)
	}
}

func TestBoardPagesThroughLargeFunnels(t *testing.T) {
	store, funnels, reasons := testFixture()
	svc := newTestService(store, funnels, reasons)

	total := boardPageSize + 25
	for i := 0; i < total; i++ {
		mustCreate(t, svc)
	}

	columns, err := svc.Board(context.Background(), 10)
	require.NoError(t, err)

	cards := 0
	for _, col := range columns {
		cards += len(col.Opportunities)
	}
	assert.Equal(t, total, cards, "every active opportunity makes it onto the board")
}

func TestBoardUnknownFunnel(t *testing.T) {
	store, funnels, reasons := testFixture()
	svc := newTestService(store, funnels, reasons)

	_, err := svc.Board(context.Background(), 99)
	require.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestGetDetailIncludesHistoryAndHealth(t *testing.T) {
	store, funnels, reasons := testFixture()
	svc := newTestService(store, funnels, reasons)
	opp := mustCreate(t, svc)

	_, err := svc.Move(context.Background(), opp.ID, 1, 2, nil, 2)
	require.NoError(t, err)

	detail, err := svc.GetDetail(context.Background(), opp.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), detail.Opportunity.CurrentStageID)
	require.Len(t, detail.History, 2)
	// stage 2 has no SLA, so health is empty
	assert.Equal(t, pipeline.SLANone, detail.Health)
}
