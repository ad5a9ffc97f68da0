package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	helper "github.com/princekumar-dev/MSEC-Academics-sub001/internals/helpers"

	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/marksheets/marksheet/model"
)

// DispatchService is the single place that talks to the Dispatch Transport.
// The manual operator path and the scheduler's automatic path both converge
// on the same attempt-then-branch logic so the flag-setting discipline stays
// identical.
type DispatchService struct {
	store     Store
	transport Transport
	notifier  Notifier
	renderer  Renderer
	now       func() time.Time
	sleep     func(time.Duration)
	pace      time.Duration
}

func NewDispatchService(store Store, transport Transport, notifier Notifier, renderer Renderer) *DispatchService {
	return &DispatchService{
		store:     store,
		transport: transport,
		notifier:  notifier,
		renderer:  renderer,
		now:       time.Now,
		sleep:     time.Sleep,
		pace:      time.Second,
	}
}

func (s *DispatchService) WithClock(now func() time.Time) *DispatchService {
	s.now = now
	return s
}

// WithPacing overrides the fixed delay between bulk sends (tests pass 0).
func (s *DispatchService) WithPacing(pace time.Duration, sleep func(time.Duration)) *DispatchService {
	s.pace = pace
	if sleep != nil {
		s.sleep = sleep
	}
	return s
}

// Send performs a manual (operator-triggered) dispatch. Only marksheets in an
// approved, rescheduled or already-dispatched status may be sent; anything
// else fails the precondition before the transport is touched.
func (s *DispatchService) Send(ctx context.Context, id string) (*model.Marksheet, error) {
	m, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !m.Status.DispatchEligible() {
		return nil, fmt.Errorf("%w: marksheet is not approved for dispatch (status=%s)", helper.ErrInvalidTransition, m.Status)
	}
	if m.Student.ParentPhone == "" {
		return nil, fmt.Errorf("%w: no parent contact number on record", helper.ErrValidation)
	}

	result, sendErr := s.attempt(ctx, m)
	if sendErr != nil {
		reason := sendErr.Error()
		if _, err := s.store.UpdateFields(ctx, id, s.failureFields(reason, result, false)); err != nil {
			log.Printf("[DISPATCH] failed to record failure for %s: %v", id, err)
		}
		s.notifyFailure(ctx, m, reason)
		return nil, fmt.Errorf("%w: %s", helper.ErrUpstream, reason)
	}

	updated, err := s.store.UpdateFields(ctx, id, s.successFields(result, false))
	if err != nil {
		// The message is already out; at-most-once means we accept that a
		// lost write here can lead to a duplicate on manual retry.
		log.Printf("[DISPATCH] sent but failed to persist outcome for %s: %v", id, err)
		return nil, err
	}
	s.notifySuccess(ctx, m)
	return updated, nil
}

type BulkFailure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

type BulkResult struct {
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Failures  []BulkFailure `json:"failures,omitempty"`
}

// SendBulk dispatches many marksheets with a fixed pacing delay between
// sends. One record's failure never aborts the rest; the result always
// reports per-record outcomes with Succeeded+Failed == Total.
func (s *DispatchService) SendBulk(ctx context.Context, ids []string) BulkResult {
	res := BulkResult{Total: len(ids)}
	for i, id := range ids {
		if i > 0 && s.pace > 0 {
			s.sleep(s.pace)
		}
		if _, err := s.Send(ctx, id); err != nil {
			res.Failed++
			res.Failures = append(res.Failures, BulkFailure{ID: id, Reason: err.Error()})
			continue
		}
		res.Succeeded++
	}
	return res
}

// AutoDispatch processes one due record on behalf of the scheduler. Every
// branch sets autoDispatched=true exactly once via a guarded update, so a
// racing manual action or a second scheduler pass cannot double-fire.
// Returns true when the send succeeded.
func (s *DispatchService) AutoDispatch(ctx context.Context, m *model.Marksheet) (bool, error) {
	id := m.HexID()
	guard := map[string]interface{}{"dispatchRequest.autoDispatched": false}

	// Missing contact is terminal: mark processed, never call the provider.
	if m.Student.ParentPhone == "" {
		reason := "no parent contact number on record"
		_, err := s.store.UpdateFieldsWhere(ctx, id, guard, s.failureFields(reason, SendResult{}, true))
		if errors.Is(err, ErrNoMatch) {
			log.Printf("[DISPATCH] %s already processed by another actor, skipping", id)
			return false, nil
		}
		if err != nil {
			return false, err
		}
		s.notifyFailure(ctx, m, reason)
		return false, nil
	}

	result, sendErr := s.attempt(ctx, m)
	if sendErr != nil {
		reason := sendErr.Error()
		_, err := s.store.UpdateFieldsWhere(ctx, id, guard, s.failureFields(reason, result, true))
		if errors.Is(err, ErrNoMatch) {
			log.Printf("[DISPATCH] %s already processed by another actor, skipping", id)
			return false, nil
		}
		if err != nil {
			return false, err
		}
		s.notifyFailure(ctx, m, reason)
		return false, nil
	}

	_, err := s.store.UpdateFieldsWhere(ctx, id, guard, s.successFields(result, true))
	if errors.Is(err, ErrNoMatch) {
		// Message went out but someone claimed the record in between; the
		// outcome fields belong to that actor now.
		log.Printf("[DISPATCH] %s raced with a manual dispatch after send", id)
		return true, nil
	}
	if err != nil {
		return true, err
	}
	s.notifySuccess(ctx, m)
	return true, nil
}

// attempt renders the document and calls the transport, folding provider
// rejections and transport faults into a single error.
func (s *DispatchService) attempt(ctx context.Context, m *model.Marksheet) (SendResult, error) {
	docURL, err := s.renderer.MarksheetDocument(ctx, m)
	if err != nil {
		return SendResult{}, fmt.Errorf("render failed: %v", err)
	}

	message := fmt.Sprintf("Dear parent, the %s marksheet of %s (%s) is attached. - MSEC",
		m.ExamName, m.Student.Name, m.Student.RegisterNumber)

	result, err := s.transport.SendDocument(ctx, m.Student.ParentPhone, docURL, message)
	if err != nil {
		return result, fmt.Errorf("transport error: %v", err)
	}
	if !result.Success {
		return result, fmt.Errorf("provider rejected message (code=%s): %s", result.ErrorCode, result.ErrorMessage)
	}
	return result, nil
}

func (s *DispatchService) successFields(result SendResult, auto bool) map[string]interface{} {
	now := s.now()
	fields := map[string]interface{}{
		"status":                           model.StatusDispatched,
		"dispatchRequest.status":           model.HodResponseDispatched,
		"dispatchStatus.dispatched":        true,
		"dispatchStatus.dispatchedAt":      now,
		"dispatchStatus.whatsappStatus":    "sent",
		"dispatchStatus.whatsappError":     "",
		"dispatchStatus.providerMessageId": result.ProviderMessageID,
		"dispatchRequest.dispatchError":    "",
		"updatedAt":                        now,
	}
	if auto {
		fields["dispatchRequest.autoDispatched"] = true
		fields["dispatchRequest.autoDispatchFailed"] = false
	}
	return fields
}

func (s *DispatchService) failureFields(reason string, result SendResult, auto bool) map[string]interface{} {
	fields := map[string]interface{}{
		"dispatchStatus.whatsappStatus": "failed",
		"dispatchStatus.whatsappError":  reason,
		"dispatchRequest.dispatchError": reason,
		"updatedAt":                     s.now(),
	}
	if result.ErrorCode != "" {
		fields["dispatchStatus.whatsappError"] = fmt.Sprintf("[%s] %s", result.ErrorCode, reason)
	}
	if auto {
		fields["dispatchRequest.autoDispatched"] = true
		fields["dispatchRequest.autoDispatchFailed"] = true
	}
	return fields
}

func (s *DispatchService) notifySuccess(ctx context.Context, m *model.Marksheet) {
	if s.notifier == nil || m.Staff.Email == "" {
		return
	}
	s.notifier.NotifyUser(ctx, m.Staff.Email,
		"Marksheet dispatched",
		fmt.Sprintf("Marksheet of %s (%s) was delivered to the parent on WhatsApp.", m.Student.Name, m.Student.RegisterNumber),
		"/staff/marksheets/"+m.HexID())
}

func (s *DispatchService) notifyFailure(ctx context.Context, m *model.Marksheet, reason string) {
	if s.notifier == nil || m.Staff.Email == "" {
		return
	}
	s.notifier.NotifyUser(ctx, m.Staff.Email,
		"Marksheet dispatch failed",
		fmt.Sprintf("Delivery of %s's marksheet failed: %s", m.Student.Name, reason),
		"/staff/marksheets/"+m.HexID())
}
