package controller

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	helper "github.com/princekumar-dev/MSEC-Academics-sub001/internals/helpers"

	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/marksheets/marksheet/dto"
	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/marksheets/marksheet/model"
	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/marksheets/marksheet/repository"
	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/marksheets/marksheet/service"
	userrepo "github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/users/repository"
)

var validate = validator.New()

type MarksheetController struct {
	Repo      *repository.MarksheetRepository
	Lifecycle *service.LifecycleService
	Users     *userrepo.UserRepository
}

func NewMarksheetController(repo *repository.MarksheetRepository, lifecycle *service.LifecycleService, users *userrepo.UserRepository) *MarksheetController {
	return &MarksheetController{Repo: repo, Lifecycle: lifecycle, Users: users}
}

// callerSnapshot resolves the caller's identity + signature for marksheet
// snapshots.
func (ctrl *MarksheetController) callerSnapshot(c *fiber.Ctx) model.ActorSnapshot {
	snap := model.ActorSnapshot{}
	snap.ID, _ = c.Locals("user_id").(string)
	snap.Name, _ = c.Locals("userName").(string)
	snap.Email, _ = c.Locals("userEmail").(string)
	if user, err := ctrl.Users.FindByID(c.UserContext(), snap.ID); err == nil {
		snap.Name = user.Name
		snap.Email = user.Email
		snap.SignatureImage = user.SignatureImage
	}
	return snap
}

// POST /marksheets
func (ctrl *MarksheetController) Create(c *fiber.Ctx) error {
	var body dto.CreateMarksheetRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(body); err != nil {
		return helper.ValidationError(c, err)
	}

	m, err := ctrl.Lifecycle.Create(c.UserContext(), service.CreateInput{
		Student:  body.Student.ToModel(),
		ExamName: body.ExamName,
		ExamDate: body.ExamDate,
		Subjects: dto.SubjectsToModel(body.Subjects),
		Staff:    ctrl.callerSnapshot(c),
	})
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Marksheet created", m)
}

// GET /marksheets
func (ctrl *MarksheetController) List(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, 20, 100)
	year, _ := strconv.Atoi(c.Query("year"))
	filter := repository.ListFilter{
		Status:     c.Query("status"),
		Department: c.Query("department"),
		Year:       year,
		Section:    c.Query("section"),
		StaffID:    c.Query("staff_id"),
		ExamName:   c.Query("exam_name"),
	}

	items, total, err := ctrl.Repo.List(c.UserContext(), filter, paging.Offset, paging.Limit)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.SuccessWithPagination(c, "Marksheets", items, helper.BuildPagination(paging, total, len(items)))
}

// GET /marksheets/:id
func (ctrl *MarksheetController) Get(c *fiber.Ctx) error {
	m, err := ctrl.Repo.FindByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.Success(c, "Marksheet", m)
}

// PUT /marksheets/:id/subjects — editing marks reverts verification.
func (ctrl *MarksheetController) UpdateSubjects(c *fiber.Ctx) error {
	var body dto.UpdateSubjectsRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(body); err != nil {
		return helper.ValidationError(c, err)
	}

	m, err := ctrl.Lifecycle.UpdateSubjects(c.UserContext(), c.Params("id"), dto.SubjectsToModel(body.Subjects))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.Success(c, "Subjects updated", m)
}

// POST /marksheets/:id/verify
func (ctrl *MarksheetController) Verify(c *fiber.Ctx) error {
	m, err := ctrl.Lifecycle.Verify(c.UserContext(), c.Params("id"), ctrl.callerSnapshot(c))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.Success(c, "Marksheet verified", m)
}

// POST /marksheets/:id/request-dispatch
func (ctrl *MarksheetController) RequestDispatch(c *fiber.Ctx) error {
	requestedBy, _ := c.Locals("user_id").(string)
	m, err := ctrl.Lifecycle.RequestDispatch(c.UserContext(), c.Params("id"), requestedBy)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.Success(c, "Dispatch requested", m)
}

// POST /marksheets/:id/reset-auto-dispatch — operator retry path after a
// terminal automatic failure.
func (ctrl *MarksheetController) ResetAutoDispatch(c *fiber.Ctx) error {
	m, err := ctrl.Lifecycle.ResetAutoDispatch(c.UserContext(), c.Params("id"))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.Success(c, "Automatic dispatch flags reset", m)
}
