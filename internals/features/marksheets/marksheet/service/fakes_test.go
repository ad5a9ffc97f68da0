package service

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/marksheets/marksheet/model"
	helper "github.com/princekumar-dev/MSEC-Academics-sub001/internals/helpers"
)

// fakeStore is an in-memory Store that applies the same dotted-path field
// maps the mongo repository would.
type fakeStore struct {
	docs map[string]*model.Marksheet

	drafts    int64
	draftsErr error

	updateErrOn map[string]error // id -> forced error on updates
	updates     []map[string]interface{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		docs:        map[string]*model.Marksheet{},
		updateErrOn: map[string]error{},
	}
}

func (f *fakeStore) add(m *model.Marksheet) string {
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	f.docs[m.HexID()] = m
	return m.HexID()
}

func (f *fakeStore) get(id string) *model.Marksheet { return f.docs[id] }

func (f *fakeStore) FindByID(ctx context.Context, id string) (*model.Marksheet, error) {
	m, ok := f.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: marksheet %s", helper.ErrNotFound, id)
	}
	cp := *m
	return &cp, nil
}

func (f *fakeStore) Insert(ctx context.Context, m *model.Marksheet) (*model.Marksheet, error) {
	f.add(m)
	cp := *m
	return &cp, nil
}

func (f *fakeStore) InsertMany(ctx context.Context, ms []model.Marksheet) (int, error) {
	for i := range ms {
		cp := ms[i]
		f.add(&cp)
	}
	return len(ms), nil
}

func (f *fakeStore) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) (*model.Marksheet, error) {
	if err := f.updateErrOn[id]; err != nil {
		return nil, err
	}
	m, ok := f.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: marksheet %s", helper.ErrNotFound, id)
	}
	applyFields(m, fields)
	f.updates = append(f.updates, fields)
	cp := *m
	return &cp, nil
}

func (f *fakeStore) UpdateFieldsWhere(ctx context.Context, id string, guard map[string]interface{}, fields map[string]interface{}) (*model.Marksheet, error) {
	if err := f.updateErrOn[id]; err != nil {
		return nil, err
	}
	m, ok := f.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: marksheet %s", helper.ErrNotFound, id)
	}
	for k, want := range guard {
		if k == "dispatchRequest.autoDispatched" && m.DispatchRequest.AutoDispatched != want.(bool) {
			return nil, ErrNoMatch
		}
	}
	applyFields(m, fields)
	f.updates = append(f.updates, fields)
	cp := *m
	return &cp, nil
}

func (f *fakeStore) CountDrafts(ctx context.Context, staffID, department string, year int) (int64, error) {
	return f.drafts, f.draftsErr
}

func (f *fakeStore) UpcomingDispatches(ctx context.Context, from, until time.Time) ([]model.Marksheet, error) {
	var out []model.Marksheet
	for _, m := range f.docs {
		d := m.DispatchRequest.ScheduledDispatchDate
		if !m.Status.DispatchEligible() || m.Status == model.StatusDispatched {
			continue
		}
		if d == nil || d.Before(from) || d.After(until) || m.DispatchRequest.PreDispatchNotificationSent {
			continue
		}
		out = append(out, *m)
	}
	return out, nil
}

func (f *fakeStore) DueDispatches(ctx context.Context, now time.Time) ([]model.Marksheet, error) {
	var out []model.Marksheet
	for _, m := range f.docs {
		d := m.DispatchRequest.ScheduledDispatchDate
		if !m.Status.DispatchEligible() || m.Status == model.StatusDispatched {
			continue
		}
		if d == nil || d.After(now) || m.DispatchRequest.AutoDispatched {
			continue
		}
		out = append(out, *m)
	}
	return out, nil
}

func applyFields(m *model.Marksheet, fields map[string]interface{}) {
	for k, v := range fields {
		switch k {
		case "status":
			m.Status = v.(model.Status)
		case "subjects":
			m.Subjects = v.([]model.Subject)
		case "overallResult":
			m.OverallResult = v.(model.Result)
		case "staff":
			m.Staff = v.(model.ActorSnapshot)
		case "hod":
			m.Hod = v.(model.ActorSnapshot)
		case "updatedAt":
			m.UpdatedAt = v.(time.Time)
		case "dispatchRequest":
			m.DispatchRequest = v.(model.DispatchRequest)
		case "dispatchRequest.status":
			m.DispatchRequest.Status = v.(model.HodResponse)
		case "dispatchRequest.hodComments":
			m.DispatchRequest.HodComments = v.(string)
		case "dispatchRequest.respondedAt":
			t := v.(time.Time)
			m.DispatchRequest.RespondedAt = &t
		case "dispatchRequest.scheduledDispatchDate":
			if v == nil {
				m.DispatchRequest.ScheduledDispatchDate = nil
			} else {
				t := v.(time.Time)
				m.DispatchRequest.ScheduledDispatchDate = &t
			}
		case "dispatchRequest.preDispatchNotificationSent":
			m.DispatchRequest.PreDispatchNotificationSent = v.(bool)
		case "dispatchRequest.autoDispatched":
			m.DispatchRequest.AutoDispatched = v.(bool)
		case "dispatchRequest.autoDispatchFailed":
			m.DispatchRequest.AutoDispatchFailed = v.(bool)
		case "dispatchRequest.dispatchError":
			m.DispatchRequest.DispatchError = v.(string)
		case "dispatchStatus.dispatched":
			m.DispatchStatus.Dispatched = v.(bool)
		case "dispatchStatus.dispatchedAt":
			t := v.(time.Time)
			m.DispatchStatus.DispatchedAt = &t
		case "dispatchStatus.whatsappStatus":
			m.DispatchStatus.WhatsAppStatus = v.(string)
		case "dispatchStatus.whatsappError":
			m.DispatchStatus.WhatsAppError = v.(string)
		case "dispatchStatus.providerMessageId":
			m.DispatchStatus.ProviderMessageID = v.(string)
		default:
			panic(fmt.Sprintf("fakeStore: unhandled field %q", k))
		}
	}
}

type notice struct {
	Email, Title, Body, Link string
}

type fakeNotifier struct {
	notices []notice
}

func (f *fakeNotifier) NotifyUser(ctx context.Context, email, title, body, link string) bool {
	f.notices = append(f.notices, notice{email, title, body, link})
	return true
}

type fakeDirectory struct {
	email string
	err   error
}

func (f *fakeDirectory) HodEmail(ctx context.Context, department string) (string, error) {
	return f.email, f.err
}

type fakeRenderer struct {
	url         string
	err         error
	invalidated []string
}

func (f *fakeRenderer) MarksheetDocument(ctx context.Context, m *model.Marksheet) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.url == "" {
		return "http://localhost/documents/" + m.HexID() + ".pdf", nil
	}
	return f.url, nil
}

func (f *fakeRenderer) Invalidate(id string) {
	f.invalidated = append(f.invalidated, id)
}

type fakeTransport struct {
	result SendResult
	err    error
	phones []string
}

func (f *fakeTransport) SendDocument(ctx context.Context, phone, documentURL, message string) (SendResult, error) {
	f.phones = append(f.phones, phone)
	if f.err != nil {
		return SendResult{}, f.err
	}
	return f.result, nil
}
