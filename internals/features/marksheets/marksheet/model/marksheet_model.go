package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubjectResult / OverallResult values.
type Result string

const (
	ResultPass   Result = "Pass"
	ResultFail   Result = "Fail"
	ResultAbsent Result = "Absent"
)

// PassMark is the minimum mark for a subject pass.
const PassMark = 50

type Subject struct {
	Name   string `bson:"name" json:"name"`
	Marks  int    `bson:"marks" json:"marks"`
	Absent bool   `bson:"absent" json:"absent"`
	Result Result `bson:"result" json:"result"`
}

// StudentSnapshot is copied onto the marksheet at creation time so the
// academic record stays stable even if the student master data changes.
type StudentSnapshot struct {
	Name           string `bson:"name" json:"name"`
	RegisterNumber string `bson:"registerNumber" json:"register_number"`
	Department     string `bson:"department" json:"department"`
	Year           int    `bson:"year" json:"year"`
	Section        string `bson:"section" json:"section"`
	ParentName     string `bson:"parentName" json:"parent_name"`
	ParentPhone    string `bson:"parentPhone" json:"parent_phone"`
}

// ActorSnapshot freezes the staff/HOD identity and signature at the moment of
// verification/approval.
type ActorSnapshot struct {
	ID             string `bson:"id" json:"id"`
	Name           string `bson:"name" json:"name"`
	Email          string `bson:"email" json:"email"`
	SignatureImage string `bson:"signatureImage,omitempty" json:"signature_image,omitempty"`
}

// DispatchRequest tracks the HOD approval round-trip plus the scheduler's
// idempotence flags.
type DispatchRequest struct {
	Status      HodResponse `bson:"status" json:"status"`
	RequestedAt *time.Time  `bson:"requestedAt,omitempty" json:"requested_at,omitempty"`
	RequestedBy string      `bson:"requestedBy,omitempty" json:"requested_by,omitempty"`
	HodComments string      `bson:"hodComments,omitempty" json:"hod_comments,omitempty"`
	RespondedAt *time.Time  `bson:"respondedAt,omitempty" json:"responded_at,omitempty"`

	ScheduledDispatchDate *time.Time `bson:"scheduledDispatchDate,omitempty" json:"scheduled_dispatch_date,omitempty"`

	// Idempotence / retry bookkeeping. Once AutoDispatched is true the
	// scheduler never reprocesses this record; a manual flag reset is the
	// only sanctioned retry path.
	PreDispatchNotificationSent bool   `bson:"preDispatchNotificationSent" json:"pre_dispatch_notification_sent"`
	AutoDispatched              bool   `bson:"autoDispatched" json:"auto_dispatched"`
	AutoDispatchFailed          bool   `bson:"autoDispatchFailed" json:"auto_dispatch_failed"`
	DispatchError               string `bson:"dispatchError,omitempty" json:"dispatch_error,omitempty"`
}

// DispatchOutcome records the last transport-level result.
type DispatchOutcome struct {
	Dispatched        bool       `bson:"dispatched" json:"dispatched"`
	DispatchedAt      *time.Time `bson:"dispatchedAt,omitempty" json:"dispatched_at,omitempty"`
	WhatsAppStatus    string     `bson:"whatsappStatus,omitempty" json:"whatsapp_status,omitempty"`
	WhatsAppError     string     `bson:"whatsappError,omitempty" json:"whatsapp_error,omitempty"`
	ProviderMessageID string     `bson:"providerMessageId,omitempty" json:"provider_message_id,omitempty"`
}

// Marksheet is one (student, examination) record.
type Marksheet struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	Student  StudentSnapshot `bson:"student" json:"student"`
	ExamName string          `bson:"examName" json:"exam_name"`
	ExamDate time.Time       `bson:"examDate" json:"exam_date"`

	Subjects      []Subject `bson:"subjects" json:"subjects"`
	OverallResult Result    `bson:"overallResult" json:"overall_result"`

	Status          Status          `bson:"status" json:"status"`
	DispatchRequest DispatchRequest `bson:"dispatchRequest" json:"dispatch_request"`
	DispatchStatus  DispatchOutcome `bson:"dispatchStatus" json:"dispatch_status"`

	Staff ActorSnapshot `bson:"staff" json:"staff"`
	Hod   ActorSnapshot `bson:"hod,omitempty" json:"hod,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"created_at"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updated_at"`
}

func (m *Marksheet) HexID() string {
	return m.ID.Hex()
}
