package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/marksheets/marksheet/model"
)

func TestDeriveSubjectResult(t *testing.T) {
	tests := []struct {
		name    string
		subject model.Subject
		want    model.Result
	}{
		{"pass at boundary", model.Subject{Name: "Maths", Marks: 50}, model.ResultPass},
		{"fail below boundary", model.Subject{Name: "Maths", Marks: 49}, model.ResultFail},
		{"full marks", model.Subject{Name: "Maths", Marks: 100}, model.ResultPass},
		{"zero marks", model.Subject{Name: "Maths", Marks: 0}, model.ResultFail},
		{"absent wins over marks", model.Subject{Name: "Maths", Marks: 90, Absent: true}, model.ResultAbsent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveSubjectResult(tt.subject))
		})
	}
}

func TestComputeOverallResult(t *testing.T) {
	tests := []struct {
		name     string
		subjects []model.Subject
		want     model.Result
	}{
		{
			"all pass",
			[]model.Subject{{Marks: 60}, {Marks: 75}, {Marks: 50}},
			model.ResultPass,
		},
		{
			"one failure fails the whole marksheet",
			[]model.Subject{{Marks: 60}, {Marks: 30}},
			model.ResultFail,
		},
		{
			"absent takes precedence over failure",
			[]model.Subject{{Marks: 30}, {Absent: true}},
			model.ResultAbsent,
		},
		{
			"single absent",
			[]model.Subject{{Marks: 90}, {Absent: true}, {Marks: 88}},
			model.ResultAbsent,
		},
		{
			"no subjects",
			nil,
			model.ResultPass,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeOverallResult(tt.subjects))
		})
	}
}

func TestNormalizeSubjects(t *testing.T) {
	in := []model.Subject{
		{Name: "Maths", Marks: 72, Result: "Fail"}, // stale result gets recomputed
		{Name: "Physics", Absent: true},
	}
	out := NormalizeSubjects(in)

	assert.Equal(t, model.ResultPass, out[0].Result)
	assert.Equal(t, model.ResultAbsent, out[1].Result)
	assert.Equal(t, model.Result("Fail"), in[0].Result, "input must not be mutated")
}
