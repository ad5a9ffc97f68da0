package service

import (
	"context"
	"time"

	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/marksheets/marksheet/model"
)

// Store is the slice of the marksheet repository the lifecycle and scheduler
// depend on. Field updates are targeted maps, not whole-document overwrites,
// so concurrent status changes clobber as little as possible.
type Store interface {
	FindByID(ctx context.Context, id string) (*model.Marksheet, error)
	Insert(ctx context.Context, m *model.Marksheet) (*model.Marksheet, error)
	InsertMany(ctx context.Context, ms []model.Marksheet) (int, error)

	// UpdateFields applies a dotted-path field map and returns the updated
	// document.
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) (*model.Marksheet, error)

	// UpdateFieldsWhere is UpdateFields with an extra guard predicate; it
	// returns ErrNoMatch when the guard no longer holds. Used as the
	// lightweight optimistic check between the scheduler and manual actions.
	UpdateFieldsWhere(ctx context.Context, id string, guard map[string]interface{}, fields map[string]interface{}) (*model.Marksheet, error)

	// CountDrafts counts remaining drafts for one staff member within a
	// (department, year) slice.
	CountDrafts(ctx context.Context, staffID, department string, year int) (int64, error)

	// UpcomingDispatches returns approved/rescheduled marksheets whose
	// scheduled date falls in [from, until] and which have not been
	// pre-notified yet.
	UpcomingDispatches(ctx context.Context, from, until time.Time) ([]model.Marksheet, error)

	// DueDispatches returns approved/rescheduled marksheets whose scheduled
	// date has passed and which have not been auto-dispatched yet.
	DueDispatches(ctx context.Context, now time.Time) ([]model.Marksheet, error)
}

// ErrNoMatch is returned by UpdateFieldsWhere when the guard predicate fails,
// i.e. another actor already transitioned the record.
var ErrNoMatch = errNoMatch{}

type errNoMatch struct{}

func (errNoMatch) Error() string { return "no document matched the guard" }

// SendResult is the structured outcome of a transport send.
type SendResult struct {
	Success           bool
	ProviderMessageID string
	ErrorCode         string
	ErrorMessage      string
}

// Transport delivers a rendered marksheet document to a parent's WhatsApp
// number. A failed delivery comes back either as (result{Success:false}, nil)
// with provider error fields set, or as a non-nil error for transport-level
// faults; callers treat both the same way.
type Transport interface {
	SendDocument(ctx context.Context, phone, documentURL, message string) (SendResult, error)
}

// Notifier is best-effort: it never returns an error, only whether a push
// delivery was attempted (for logging).
type Notifier interface {
	NotifyUser(ctx context.Context, email, title, body, link string) bool
}

// Renderer produces the shareable document URL for a marksheet.
type Renderer interface {
	MarksheetDocument(ctx context.Context, m *model.Marksheet) (string, error)
	Invalidate(id string)
}

// Directory resolves approver contacts.
type Directory interface {
	HodEmail(ctx context.Context, department string) (string, error)
}
