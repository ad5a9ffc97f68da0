package service

import (
	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/marksheets/marksheet/model"
)

// DeriveSubjectResult fills in the per-subject result from marks/absent.
func DeriveSubjectResult(s model.Subject) model.Result {
	if s.Absent {
		return model.ResultAbsent
	}
	if s.Marks < model.PassMark {
		return model.ResultFail
	}
	return model.ResultPass
}

// NormalizeSubjects returns a copy of the list with every derived result
// recomputed.
func NormalizeSubjects(subjects []model.Subject) []model.Subject {
	out := make([]model.Subject, len(subjects))
	for i, s := range subjects {
		s.Result = DeriveSubjectResult(s)
		out[i] = s
	}
	return out
}

// ComputeOverallResult is a pure function of the subject list:
// Absent if any subject is absent, else Fail if any subject failed,
// else Pass.
func ComputeOverallResult(subjects []model.Subject) model.Result {
	anyFail := false
	for _, s := range subjects {
		switch DeriveSubjectResult(s) {
		case model.ResultAbsent:
			return model.ResultAbsent
		case model.ResultFail:
			anyFail = true
		}
	}
	if anyFail {
		return model.ResultFail
	}
	return model.ResultPass
}
