package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/marksheets/marksheet/model"
	helper "github.com/princekumar-dev/MSEC-Academics-sub001/internals/helpers"
)

var testClock = func() time.Time {
	return time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
}

func newLifecycleFixture() (*LifecycleService, *fakeStore, *fakeNotifier) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	svc := NewLifecycleService(store, notifier, &fakeDirectory{email: "hod.cse@msec.edu.in"}, &fakeRenderer{}).
		WithClock(testClock)
	return svc, store, notifier
}

func seedMarksheet(store *fakeStore, status model.Status) string {
	return store.add(&model.Marksheet{
		Student: model.StudentSnapshot{
			Name:           "Arun Kumar",
			RegisterNumber: "310620104001",
			Department:     "CSE",
			Year:           3,
			Section:        "A",
			ParentPhone:    "+919840012345",
		},
		ExamName: "Model Exam 1",
		Subjects: []model.Subject{
			{Name: "Maths", Marks: 72, Result: model.ResultPass},
			{Name: "Physics", Marks: 64, Result: model.ResultPass},
		},
		OverallResult: model.ResultPass,
		Status:        status,
		Staff:         model.ActorSnapshot{ID: "staff-1", Name: "Priya", Email: "priya@msec.edu.in"},
	})
}

func TestCreateRequiresIdentity(t *testing.T) {
	svc, _, _ := newLifecycleFixture()

	_, err := svc.Create(context.Background(), CreateInput{ExamName: "Model Exam 1"})
	assert.ErrorIs(t, err, helper.ErrValidation)

	_, err = svc.Create(context.Background(), CreateInput{
		Student: model.StudentSnapshot{RegisterNumber: "310620104001"},
	})
	assert.ErrorIs(t, err, helper.ErrValidation)
}

func TestCreateDerivesResults(t *testing.T) {
	svc, store, _ := newLifecycleFixture()

	m, err := svc.Create(context.Background(), CreateInput{
		Student:  model.StudentSnapshot{Name: "Arun", RegisterNumber: "310620104001", Department: "CSE", Year: 3},
		ExamName: "Model Exam 1",
		Subjects: []model.Subject{
			{Name: "Maths", Marks: 60},
			{Name: "Physics", Marks: 30},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, model.StatusDraft, m.Status)
	assert.Equal(t, model.ResultFail, m.OverallResult)
	assert.Equal(t, model.ResultPass, m.Subjects[0].Result)
	assert.Equal(t, model.ResultFail, m.Subjects[1].Result)
	assert.Equal(t, model.HodResponsePending, m.DispatchRequest.Status)
	assert.Equal(t, testClock(), m.CreatedAt)
	require.NotNil(t, store.get(m.HexID()))
}

func TestUpdateSubjectsRevertsVerifiedToDraft(t *testing.T) {
	store := newFakeStore()
	renderer := &fakeRenderer{}
	svc := NewLifecycleService(store, &fakeNotifier{}, &fakeDirectory{}, renderer).WithClock(testClock)
	id := seedMarksheet(store, model.StatusVerifiedByStaff)

	m, err := svc.UpdateSubjects(context.Background(), id, []model.Subject{
		{Name: "Maths", Marks: 45},
		{Name: "Physics", Marks: 80},
	})
	require.NoError(t, err)

	assert.Equal(t, model.StatusDraft, m.Status, "any edit forces re-verification")
	assert.Equal(t, model.ResultFail, m.OverallResult)
	assert.Equal(t, []string{id}, renderer.invalidated, "cached rendering must be dropped")
}

func TestUpdateSubjectsBlockedAfterDispatchRequest(t *testing.T) {
	svc, store, _ := newLifecycleFixture()
	for _, status := range []model.Status{
		model.StatusDispatchRequested,
		model.StatusApprovedByHod,
		model.StatusDispatched,
	} {
		id := seedMarksheet(store, status)
		_, err := svc.UpdateSubjects(context.Background(), id, []model.Subject{{Name: "Maths", Marks: 99}})
		assert.ErrorIs(t, err, helper.ErrInvalidTransition, "status %s", status)
		assert.Equal(t, status, store.get(id).Status, "status must not change on a rejected edit")
	}
}

func TestVerifyTransitionsAndSnapshotsStaff(t *testing.T) {
	svc, store, notifier := newLifecycleFixture()
	store.drafts = 3
	id := seedMarksheet(store, model.StatusDraft)

	staff := model.ActorSnapshot{ID: "staff-1", Name: "Priya", Email: "priya@msec.edu.in", SignatureImage: "/signatures/staff-1.png"}
	m, err := svc.Verify(context.Background(), id, staff)
	require.NoError(t, err)

	assert.Equal(t, model.StatusVerifiedByStaff, m.Status)
	assert.Equal(t, staff, m.Staff)
	assert.Empty(t, notifier.notices, "HOD is only notified when no drafts remain")
}

func TestVerifyLastDraftNotifiesHod(t *testing.T) {
	svc, store, notifier := newLifecycleFixture()
	store.drafts = 0
	id := seedMarksheet(store, model.StatusDraft)

	_, err := svc.Verify(context.Background(), id, model.ActorSnapshot{ID: "staff-1", Name: "Priya"})
	require.NoError(t, err)

	require.Len(t, notifier.notices, 1)
	assert.Equal(t, "hod.cse@msec.edu.in", notifier.notices[0].Email)
	assert.Equal(t, "Marks entry completed", notifier.notices[0].Title)
}

func TestVerifyGuards(t *testing.T) {
	svc, store, _ := newLifecycleFixture()

	id := seedMarksheet(store, model.StatusVerifiedByStaff)
	_, err := svc.Verify(context.Background(), id, model.ActorSnapshot{ID: "staff-1"})
	assert.ErrorIs(t, err, helper.ErrInvalidTransition)

	empty := store.add(&model.Marksheet{Status: model.StatusDraft})
	_, err = svc.Verify(context.Background(), empty, model.ActorSnapshot{ID: "staff-1"})
	assert.ErrorIs(t, err, helper.ErrValidation)

	_, err = svc.Verify(context.Background(), "65f000000000000000000000", model.ActorSnapshot{})
	assert.ErrorIs(t, err, helper.ErrNotFound)
}

func TestRequestDispatchResetsApprovalRound(t *testing.T) {
	svc, store, notifier := newLifecycleFixture()
	id := seedMarksheet(store, model.StatusVerifiedByStaff)

	// Leftovers from a previous rejected round must not leak into the new one.
	stale := store.get(id)
	stale.DispatchRequest.Status = model.HodResponseRejected
	stale.DispatchRequest.HodComments = "marks look wrong"
	stale.DispatchRequest.AutoDispatchFailed = true

	m, err := svc.RequestDispatch(context.Background(), id, "staff-1")
	require.NoError(t, err)

	assert.Equal(t, model.StatusDispatchRequested, m.Status)
	assert.Equal(t, model.HodResponsePending, m.DispatchRequest.Status)
	assert.Equal(t, "staff-1", m.DispatchRequest.RequestedBy)
	assert.Empty(t, m.DispatchRequest.HodComments)
	assert.False(t, m.DispatchRequest.AutoDispatchFailed)
	require.NotNil(t, m.DispatchRequest.RequestedAt)
	assert.Equal(t, testClock(), *m.DispatchRequest.RequestedAt)

	require.Len(t, notifier.notices, 1)
	assert.Equal(t, "hod.cse@msec.edu.in", notifier.notices[0].Email)
}

func TestRequestDispatchRequiresVerified(t *testing.T) {
	svc, store, _ := newLifecycleFixture()
	for _, status := range []model.Status{model.StatusDraft, model.StatusDispatchRequested, model.StatusRejectedByHod} {
		id := seedMarksheet(store, status)
		_, err := svc.RequestDispatch(context.Background(), id, "staff-1")
		assert.ErrorIs(t, err, helper.ErrInvalidTransition, "status %s", status)
	}
}

func TestHodRespond(t *testing.T) {
	scheduled := time.Date(2026, 3, 20, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		response   string
		date       *time.Time
		wantStatus model.Status
		wantDate   *time.Time
	}{
		{"approved", "approved", nil, model.StatusApprovedByHod, nil},
		{"rejected", "rejected", nil, model.StatusRejectedByHod, nil},
		{"rescheduled", "rescheduled", &scheduled, model.StatusRescheduledByHod, &scheduled},
		// approving must clear any stale schedule from a previous round
		{"approve clears stale date", "approved", nil, model.StatusApprovedByHod, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, notifier := newLifecycleFixture()
			id := seedMarksheet(store, model.StatusDispatchRequested)
			old := scheduled.Add(-48 * time.Hour)
			store.get(id).DispatchRequest.ScheduledDispatchDate = &old

			hod := model.ActorSnapshot{ID: "hod-1", Name: "Dr. Lakshmi", Email: "hod.cse@msec.edu.in"}
			m, err := svc.HodRespond(context.Background(), id, hod, tt.response, "checked", tt.date)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, m.Status)
			assert.Equal(t, model.HodResponse(tt.response), m.DispatchRequest.Status)
			assert.Equal(t, "checked", m.DispatchRequest.HodComments)
			assert.Equal(t, hod, m.Hod)
			if tt.wantDate == nil {
				assert.Nil(t, m.DispatchRequest.ScheduledDispatchDate)
			} else {
				require.NotNil(t, m.DispatchRequest.ScheduledDispatchDate)
				assert.Equal(t, *tt.wantDate, *m.DispatchRequest.ScheduledDispatchDate)
			}

			require.Len(t, notifier.notices, 1, "staff must hear about the decision")
			assert.Equal(t, "priya@msec.edu.in", notifier.notices[0].Email)
		})
	}
}

func TestHodRespondRescheduleRequiresDate(t *testing.T) {
	svc, store, _ := newLifecycleFixture()
	id := seedMarksheet(store, model.StatusDispatchRequested)

	_, err := svc.HodRespond(context.Background(), id, model.ActorSnapshot{ID: "hod-1"}, "rescheduled", "", nil)
	assert.ErrorIs(t, err, helper.ErrValidation)
	assert.Equal(t, model.StatusDispatchRequested, store.get(id).Status, "a rejected reschedule leaves the request pending")
}

func TestHodRespondGuards(t *testing.T) {
	svc, store, _ := newLifecycleFixture()

	id := seedMarksheet(store, model.StatusVerifiedByStaff)
	_, err := svc.HodRespond(context.Background(), id, model.ActorSnapshot{}, "approved", "", nil)
	assert.ErrorIs(t, err, helper.ErrInvalidTransition)

	id = seedMarksheet(store, model.StatusDispatchRequested)
	_, err = svc.HodRespond(context.Background(), id, model.ActorSnapshot{}, "maybe", "", nil)
	assert.ErrorIs(t, err, helper.ErrValidation)
}

func TestResetAutoDispatch(t *testing.T) {
	svc, store, _ := newLifecycleFixture()
	id := seedMarksheet(store, model.StatusRescheduledByHod)
	m := store.get(id)
	m.DispatchRequest.AutoDispatched = true
	m.DispatchRequest.AutoDispatchFailed = true
	m.DispatchRequest.DispatchError = "provider rejected message"

	updated, err := svc.ResetAutoDispatch(context.Background(), id)
	require.NoError(t, err)

	assert.False(t, updated.DispatchRequest.AutoDispatched)
	assert.False(t, updated.DispatchRequest.AutoDispatchFailed)
	assert.Empty(t, updated.DispatchRequest.DispatchError)
}

func TestResetAutoDispatchRequiresProcessedRecord(t *testing.T) {
	svc, store, _ := newLifecycleFixture()
	id := seedMarksheet(store, model.StatusRescheduledByHod)

	_, err := svc.ResetAutoDispatch(context.Background(), id)
	assert.ErrorIs(t, err, helper.ErrInvalidTransition)
}
