package model

import "fmt"

// Status is the marksheet lifecycle state. Unknown strings are rejected at
// the boundary via ParseStatus instead of being stored as-is.
type Status string

const (
	StatusDraft             Status = "draft"
	StatusVerifiedByStaff   Status = "verified_by_staff"
	StatusDispatchRequested Status = "dispatch_requested"
	StatusApprovedByHod     Status = "approved_by_hod"
	StatusRejectedByHod     Status = "rejected_by_hod"
	StatusRescheduledByHod  Status = "rescheduled_by_hod"
	StatusDispatched        Status = "dispatched"
)

var allStatuses = []Status{
	StatusDraft,
	StatusVerifiedByStaff,
	StatusDispatchRequested,
	StatusApprovedByHod,
	StatusRejectedByHod,
	StatusRescheduledByHod,
	StatusDispatched,
}

func ParseStatus(s string) (Status, error) {
	for _, st := range allStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown marksheet status %q", s)
}

func (s Status) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

// DispatchEligible reports whether a transport send is allowed from this
// status. Re-sending an already dispatched marksheet is allowed so parents
// can request a resend.
func (s Status) DispatchEligible() bool {
	switch s {
	case StatusApprovedByHod, StatusRescheduledByHod, StatusDispatched:
		return true
	default:
		return false
	}
}

// HodResponse is the dispatchRequest sub-status.
type HodResponse string

const (
	HodResponsePending     HodResponse = "pending"
	HodResponseApproved    HodResponse = "approved"
	HodResponseRejected    HodResponse = "rejected"
	HodResponseRescheduled HodResponse = "rescheduled"
	HodResponseDispatched  HodResponse = "dispatched"
)

func ParseHodResponse(s string) (HodResponse, error) {
	switch HodResponse(s) {
	case HodResponseApproved, HodResponseRejected, HodResponseRescheduled:
		return HodResponse(s), nil
	default:
		return "", fmt.Errorf("unknown HOD response %q", s)
	}
}

// StatusForResponse maps a HOD response onto the lifecycle status it produces.
func StatusForResponse(r HodResponse) Status {
	switch r {
	case HodResponseApproved:
		return StatusApprovedByHod
	case HodResponseRejected:
		return StatusRejectedByHod
	case HodResponseRescheduled:
		return StatusRescheduledByHod
	default:
		return StatusDispatchRequested
	}
}
