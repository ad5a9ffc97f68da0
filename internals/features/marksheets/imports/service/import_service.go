package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	helper "github.com/princekumar-dev/MSEC-Academics-sub001/internals/helpers"

	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/marksheets/marksheet/model"
	marksvc "github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/marksheets/marksheet/service"
)

// AbsentMarker is the cell value staff use for an absent student.
const AbsentMarker = "AB"

// Fixed leading columns of the import sheet; every column after these is a
// subject.
var baseColumns = []string{"register number", "student name", "parent name", "parent phone", "section"}

type ImportOptions struct {
	Department string
	Year       int
	ExamName   string
	ExamDate   time.Time
	Staff      model.ActorSnapshot
	Sheet      string // empty = first sheet
}

type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

type ParseResult struct {
	Subjects []string
	Inputs   []marksvc.CreateInput
	Errors   []RowError
}

// ImportReport is the batch outcome: per-row failures never abort the batch.
type ImportReport struct {
	TotalRows int        `json:"total_rows"`
	Created   int        `json:"created"`
	Failed    int        `json:"failed"`
	Errors    []RowError `json:"errors,omitempty"`
	DryRun    bool       `json:"dry_run"`
}

// ImportService turns an uploaded marks workbook into draft marksheets.
type ImportService struct {
	lifecycle *marksvc.LifecycleService
}

func NewImportService(lifecycle *marksvc.LifecycleService) *ImportService {
	return &ImportService{lifecycle: lifecycle}
}

// Parse reads the workbook and validates row by row. A malformed row is
// recorded and skipped; it never fails the whole parse.
func (s *ImportService) Parse(r io.Reader, opts ImportOptions) (ParseResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return ParseResult{}, fmt.Errorf("%w: could not open workbook: %v", helper.ErrValidation, err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return ParseResult{}, fmt.Errorf("%w: sheet %q not found", helper.ErrValidation, sheet)
	}
	if len(rows) < 2 {
		return ParseResult{}, fmt.Errorf("%w: workbook has no data rows", helper.ErrValidation)
	}

	header := rows[0]
	if len(header) <= len(baseColumns) {
		return ParseResult{}, fmt.Errorf("%w: header must list %s followed by at least one subject",
			helper.ErrValidation, strings.Join(baseColumns, ", "))
	}
	for i, want := range baseColumns {
		if !strings.EqualFold(strings.TrimSpace(header[i]), want) {
			return ParseResult{}, fmt.Errorf("%w: column %d must be %q, got %q",
				helper.ErrValidation, i+1, want, header[i])
		}
	}
	subjects := make([]string, 0, len(header)-len(baseColumns))
	for _, h := range header[len(baseColumns):] {
		name := strings.TrimSpace(h)
		if name == "" {
			return ParseResult{}, fmt.Errorf("%w: empty subject column in header", helper.ErrValidation)
		}
		subjects = append(subjects, name)
	}

	result := ParseResult{Subjects: subjects}
	for i, row := range rows[1:] {
		rowNum := i + 2 // 1-based, after header
		input, err := s.parseRow(row, subjects, opts)
		if err != nil {
			result.Errors = append(result.Errors, RowError{Row: rowNum, Reason: err.Error()})
			continue
		}
		result.Inputs = append(result.Inputs, input)
	}
	return result, nil
}

func (s *ImportService) parseRow(row []string, subjects []string, opts ImportOptions) (marksvc.CreateInput, error) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	regNo := cell(0)
	name := cell(1)
	if regNo == "" || name == "" {
		return marksvc.CreateInput{}, fmt.Errorf("register number and student name are required")
	}

	subs := make([]model.Subject, 0, len(subjects))
	for j, subjName := range subjects {
		raw := cell(len(baseColumns) + j)
		if raw == "" {
			return marksvc.CreateInput{}, fmt.Errorf("missing marks for %s", subjName)
		}
		if strings.EqualFold(raw, AbsentMarker) {
			subs = append(subs, model.Subject{Name: subjName, Absent: true})
			continue
		}
		marks, err := strconv.Atoi(raw)
		if err != nil || marks < 0 || marks > 100 {
			return marksvc.CreateInput{}, fmt.Errorf("invalid marks %q for %s", raw, subjName)
		}
		subs = append(subs, model.Subject{Name: subjName, Marks: marks})
	}

	return marksvc.CreateInput{
		Student: model.StudentSnapshot{
			Name:           name,
			RegisterNumber: regNo,
			Department:     opts.Department,
			Year:           opts.Year,
			Section:        cell(4),
			ParentName:     cell(2),
			ParentPhone:    cell(3),
		},
		ExamName: opts.ExamName,
		ExamDate: opts.ExamDate,
		Subjects: subs,
		Staff:    opts.Staff,
	}, nil
}

// Import parses and, unless dryRun, creates the draft marksheets.
func (s *ImportService) Import(ctx context.Context, r io.Reader, opts ImportOptions, dryRun bool) (ImportReport, error) {
	parsed, err := s.Parse(r, opts)
	if err != nil {
		return ImportReport{}, err
	}

	report := ImportReport{
		TotalRows: len(parsed.Inputs) + len(parsed.Errors),
		Failed:    len(parsed.Errors),
		Errors:    parsed.Errors,
		DryRun:    dryRun,
	}
	if dryRun {
		report.Created = len(parsed.Inputs)
		return report, nil
	}

	created, err := s.lifecycle.CreateMany(ctx, parsed.Inputs)
	report.Created = created
	if err != nil {
		report.Failed += len(parsed.Inputs) - created
		return report, err
	}
	return report, nil
}
