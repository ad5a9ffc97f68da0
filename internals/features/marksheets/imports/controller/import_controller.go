package controller

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	helper "github.com/princekumar-dev/MSEC-Academics-sub001/internals/helpers"

	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/constants"
	importsvc "github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/marksheets/imports/service"
	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/marksheets/marksheet/model"
	userrepo "github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/users/repository"
)

type ImportController struct {
	Service *importsvc.ImportService
	Users   *userrepo.UserRepository
}

func NewImportController(service *importsvc.ImportService, users *userrepo.UserRepository) *ImportController {
	return &ImportController{Service: service, Users: users}
}

// POST /marksheets/import — multipart upload of a marks workbook.
// Form fields: file, department, year, exam_name, exam_date (RFC3339 or
// 2006-01-02), dry_run.
func (ctrl *ImportController) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "file is required")
	}
	if constants.DetectFileTypeFromExt(fileHeader.Filename) != constants.FileExcel {
		return helper.Error(c, fiber.StatusBadRequest, "file must be an .xlsx workbook")
	}

	department := c.FormValue("department")
	examName := c.FormValue("exam_name")
	year, _ := strconv.Atoi(c.FormValue("year"))
	if department == "" || examName == "" || year == 0 {
		return helper.Error(c, fiber.StatusBadRequest, "department, year and exam_name are required")
	}

	examDate := time.Now()
	if raw := c.FormValue("exam_date"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			parsed, err = time.Parse("2006-01-02", raw)
		}
		if err != nil {
			return helper.Error(c, fiber.StatusBadRequest, "exam_date must be RFC3339 or YYYY-MM-DD")
		}
		examDate = parsed
	}
	dryRun, _ := strconv.ParseBool(c.FormValue("dry_run", "false"))

	staff := model.ActorSnapshot{}
	staff.ID, _ = c.Locals("user_id").(string)
	staff.Name, _ = c.Locals("userName").(string)
	staff.Email, _ = c.Locals("userEmail").(string)
	if user, err := ctrl.Users.FindByID(c.UserContext(), staff.ID); err == nil {
		staff.Name = user.Name
		staff.Email = user.Email
		staff.SignatureImage = user.SignatureImage
	}

	src, err := fileHeader.Open()
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "unreadable upload")
	}
	defer src.Close()

	report, err := ctrl.Service.Import(c.UserContext(), src, importsvc.ImportOptions{
		Department: department,
		Year:       year,
		ExamName:   examName,
		ExamDate:   examDate,
		Staff:      staff,
		Sheet:      c.FormValue("sheet"),
	}, dryRun)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.Success(c, "Import finished", report)
}
