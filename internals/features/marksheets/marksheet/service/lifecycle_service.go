package service

import (
	"context"
	"fmt"
	"log"
	"time"

	helper "github.com/princekumar-dev/MSEC-Academics-sub001/internals/helpers"

	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/marksheets/marksheet/model"
)

// LifecycleService owns every status transition a marksheet can take. Each
// operation loads the record, checks the source status, and applies a
// targeted field update.
type LifecycleService struct {
	store     Store
	notifier  Notifier
	directory Directory
	renderer  Renderer
	now       func() time.Time
}

func NewLifecycleService(store Store, notifier Notifier, directory Directory, renderer Renderer) *LifecycleService {
	return &LifecycleService{
		store:     store,
		notifier:  notifier,
		directory: directory,
		renderer:  renderer,
		now:       time.Now,
	}
}

// WithClock replaces the wall clock, for tests.
func (s *LifecycleService) WithClock(now func() time.Time) *LifecycleService {
	s.now = now
	return s
}

type CreateInput struct {
	Student  model.StudentSnapshot
	ExamName string
	ExamDate time.Time
	Subjects []model.Subject
	Staff    model.ActorSnapshot
}

// Create inserts a new draft marksheet with derived results.
func (s *LifecycleService) Create(ctx context.Context, in CreateInput) (*model.Marksheet, error) {
	if in.Student.RegisterNumber == "" || in.ExamName == "" {
		return nil, fmt.Errorf("%w: register number and exam name are required", helper.ErrValidation)
	}
	now := s.now()
	m := &model.Marksheet{
		Student:       in.Student,
		ExamName:      in.ExamName,
		ExamDate:      in.ExamDate,
		Subjects:      NormalizeSubjects(in.Subjects),
		OverallResult: ComputeOverallResult(in.Subjects),
		Status:        model.StatusDraft,
		DispatchRequest: model.DispatchRequest{
			Status: model.HodResponsePending,
		},
		Staff:     in.Staff,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return s.store.Insert(ctx, m)
}

// CreateMany inserts many drafts at once (Excel import confirmation).
func (s *LifecycleService) CreateMany(ctx context.Context, ins []CreateInput) (int, error) {
	now := s.now()
	ms := make([]model.Marksheet, 0, len(ins))
	for _, in := range ins {
		ms = append(ms, model.Marksheet{
			Student:       in.Student,
			ExamName:      in.ExamName,
			ExamDate:      in.ExamDate,
			Subjects:      NormalizeSubjects(in.Subjects),
			OverallResult: ComputeOverallResult(in.Subjects),
			Status:        model.StatusDraft,
			DispatchRequest: model.DispatchRequest{
				Status: model.HodResponsePending,
			},
			Staff:     in.Staff,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return s.store.InsertMany(ctx, ms)
}

// UpdateSubjects edits the subject list. Any edit reverts a verified
// marksheet to draft so it must be re-verified.
func (s *LifecycleService) UpdateSubjects(ctx context.Context, id string, subjects []model.Subject) (*model.Marksheet, error) {
	m, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch m.Status {
	case model.StatusDraft, model.StatusVerifiedByStaff:
	default:
		return nil, fmt.Errorf("%w: subjects cannot be edited once dispatch has been requested (status=%s)", helper.ErrInvalidTransition, m.Status)
	}

	normalized := NormalizeSubjects(subjects)
	updated, err := s.store.UpdateFields(ctx, id, map[string]interface{}{
		"subjects":      normalized,
		"overallResult": ComputeOverallResult(normalized),
		"status":        model.StatusDraft,
		"updatedAt":     s.now(),
	})
	if err != nil {
		return nil, err
	}
	// The cached rendering no longer matches the marks.
	if s.renderer != nil {
		s.renderer.Invalidate(id)
	}
	return updated, nil
}

// Verify moves draft → verified_by_staff, snapshotting the verifying staff
// member. When this was the staff's last remaining draft for the
// (department, year) slice, the HOD is notified once.
func (s *LifecycleService) Verify(ctx context.Context, id string, staff model.ActorSnapshot) (*model.Marksheet, error) {
	m, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.Status != model.StatusDraft {
		return nil, fmt.Errorf("%w: only draft marksheets can be verified (status=%s)", helper.ErrInvalidTransition, m.Status)
	}
	if len(m.Subjects) == 0 {
		return nil, fmt.Errorf("%w: marksheet has no subjects", helper.ErrValidation)
	}

	updated, err := s.store.UpdateFields(ctx, id, map[string]interface{}{
		"status":        model.StatusVerifiedByStaff,
		"overallResult": ComputeOverallResult(m.Subjects),
		"staff":         staff,
		"updatedAt":     s.now(),
	})
	if err != nil {
		return nil, err
	}

	remaining, err := s.store.CountDrafts(ctx, staff.ID, m.Student.Department, m.Student.Year)
	if err != nil {
		// Notification is best-effort; the transition already happened.
		log.Printf("[LIFECYCLE] draft count failed for staff=%s: %v", staff.ID, err)
		return updated, nil
	}
	if remaining == 0 {
		s.notifyHod(ctx, m.Student.Department,
			"Marks entry completed",
			fmt.Sprintf("%s has verified all marksheets for %s year %d.", staff.Name, m.Student.Department, m.Student.Year),
			"/hod/marksheets?status=verified_by_staff",
		)
	}
	return updated, nil
}

// RequestDispatch moves verified_by_staff → dispatch_requested and resets the
// whole dispatchRequest sub-record for a fresh approval round.
func (s *LifecycleService) RequestDispatch(ctx context.Context, id string, requestedBy string) (*model.Marksheet, error) {
	m, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.Status != model.StatusVerifiedByStaff {
		return nil, fmt.Errorf("%w: dispatch can only be requested for verified marksheets (status=%s)", helper.ErrInvalidTransition, m.Status)
	}

	now := s.now()
	updated, err := s.store.UpdateFields(ctx, id, map[string]interface{}{
		"status": model.StatusDispatchRequested,
		"dispatchRequest": model.DispatchRequest{
			Status:      model.HodResponsePending,
			RequestedAt: &now,
			RequestedBy: requestedBy,
		},
		"updatedAt": now,
	})
	if err != nil {
		return nil, err
	}

	s.notifyHod(ctx, m.Student.Department,
		"Dispatch approval requested",
		fmt.Sprintf("Marksheet of %s (%s) awaits your approval.", m.Student.Name, m.Student.RegisterNumber),
		"/hod/dispatch-requests",
	)
	return updated, nil
}

// HodRespond records the HOD's decision on a pending dispatch request.
// response must be approved, rejected or rescheduled; rescheduled requires a
// scheduled dispatch date.
func (s *LifecycleService) HodRespond(ctx context.Context, id string, hod model.ActorSnapshot, response string, comments string, scheduledDate *time.Time) (*model.Marksheet, error) {
	m, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.Status != model.StatusDispatchRequested {
		return nil, fmt.Errorf("%w: no pending dispatch request (status=%s)", helper.ErrInvalidTransition, m.Status)
	}

	resp, err := model.ParseHodResponse(response)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", helper.ErrValidation, err)
	}
	if resp == model.HodResponseRescheduled && scheduledDate == nil {
		return nil, fmt.Errorf("%w: scheduledDispatchDate is required when rescheduling", helper.ErrValidation)
	}

	now := s.now()
	fields := map[string]interface{}{
		"status":                      model.StatusForResponse(resp),
		"dispatchRequest.status":      resp,
		"dispatchRequest.hodComments": comments,
		"dispatchRequest.respondedAt": now,
		"hod":                         hod,
		"updatedAt":                   now,
	}
	if resp == model.HodResponseRescheduled {
		fields["dispatchRequest.scheduledDispatchDate"] = *scheduledDate
	} else {
		fields["dispatchRequest.scheduledDispatchDate"] = nil
	}

	updated, err := s.store.UpdateFields(ctx, id, fields)
	if err != nil {
		return nil, err
	}

	title := "Dispatch request " + string(resp)
	body := fmt.Sprintf("HOD %s the dispatch of %s's marksheet.", resp, m.Student.Name)
	if resp == model.HodResponseRescheduled {
		body = fmt.Sprintf("HOD rescheduled the dispatch of %s's marksheet to %s.",
			m.Student.Name, scheduledDate.Format("02 Jan 2006 15:04"))
	}
	s.notifyStaff(ctx, m, title, body, "/staff/marksheets/"+id)
	return updated, nil
}

// ResetAutoDispatch clears the scheduler's idempotence flags so the next pass
// picks the record up again. This is the only sanctioned automatic-retry
// path after a terminal failure.
func (s *LifecycleService) ResetAutoDispatch(ctx context.Context, id string) (*model.Marksheet, error) {
	m, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !m.DispatchRequest.AutoDispatched {
		return nil, fmt.Errorf("%w: marksheet has not been auto-processed", helper.ErrInvalidTransition)
	}
	return s.store.UpdateFields(ctx, id, map[string]interface{}{
		"dispatchRequest.autoDispatched":     false,
		"dispatchRequest.autoDispatchFailed": false,
		"dispatchRequest.dispatchError":      "",
		"updatedAt":                          s.now(),
	})
}

func (s *LifecycleService) notifyHod(ctx context.Context, department, title, body, link string) {
	if s.notifier == nil || s.directory == nil {
		return
	}
	email, err := s.directory.HodEmail(ctx, department)
	if err != nil {
		log.Printf("[LIFECYCLE] HOD lookup failed for %s: %v", department, err)
		return
	}
	s.notifier.NotifyUser(ctx, email, title, body, link)
}

func (s *LifecycleService) notifyStaff(ctx context.Context, m *model.Marksheet, title, body, link string) {
	if s.notifier == nil || m.Staff.Email == "" {
		return
	}
	s.notifier.NotifyUser(ctx, m.Staff.Email, title, body, link)
}
