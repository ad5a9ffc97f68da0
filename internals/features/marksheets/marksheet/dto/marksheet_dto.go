package dto

import (
	"time"

	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/marksheets/marksheet/model"
)

type SubjectInput struct {
	Name   string `json:"name" validate:"required"`
	Marks  int    `json:"marks" validate:"min=0,max=100"`
	Absent bool   `json:"absent"`
}

func (s SubjectInput) ToModel() model.Subject {
	return model.Subject{Name: s.Name, Marks: s.Marks, Absent: s.Absent}
}

func SubjectsToModel(in []SubjectInput) []model.Subject {
	out := make([]model.Subject, len(in))
	for i, s := range in {
		out[i] = s.ToModel()
	}
	return out
}

type StudentInput struct {
	Name           string `json:"name" validate:"required"`
	RegisterNumber string `json:"register_number" validate:"required"`
	Department     string `json:"department" validate:"required"`
	Year           int    `json:"year" validate:"required,min=1,max=4"`
	Section        string `json:"section"`
	ParentName     string `json:"parent_name"`
	ParentPhone    string `json:"parent_phone"`
}

func (s StudentInput) ToModel() model.StudentSnapshot {
	return model.StudentSnapshot{
		Name:           s.Name,
		RegisterNumber: s.RegisterNumber,
		Department:     s.Department,
		Year:           s.Year,
		Section:        s.Section,
		ParentName:     s.ParentName,
		ParentPhone:    s.ParentPhone,
	}
}

type CreateMarksheetRequest struct {
	Student  StudentInput   `json:"student" validate:"required"`
	ExamName string         `json:"exam_name" validate:"required"`
	ExamDate time.Time      `json:"exam_date" validate:"required"`
	Subjects []SubjectInput `json:"subjects" validate:"required,min=1,dive"`
}

type UpdateSubjectsRequest struct {
	Subjects []SubjectInput `json:"subjects" validate:"required,min=1,dive"`
}

type HodRespondRequest struct {
	Response              string     `json:"response" validate:"required,oneof=approved rejected rescheduled"`
	Comments              string     `json:"comments"`
	ScheduledDispatchDate *time.Time `json:"scheduled_dispatch_date"`
}

type BulkDispatchRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,required"`
}
