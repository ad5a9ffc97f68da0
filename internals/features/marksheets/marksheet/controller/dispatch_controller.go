package controller

import (
	"github.com/gofiber/fiber/v2"

	helper "github.com/princekumar-dev/MSEC-Academics-sub001/internals/helpers"

	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/marksheets/marksheet/dto"
	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/marksheets/marksheet/model"
	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/marksheets/marksheet/service"
	userrepo "github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/users/repository"
)

type DispatchController struct {
	Lifecycle *service.LifecycleService
	Dispatch  *service.DispatchService
	Users     *userrepo.UserRepository
}

func NewDispatchController(lifecycle *service.LifecycleService, dispatch *service.DispatchService, users *userrepo.UserRepository) *DispatchController {
	return &DispatchController{Lifecycle: lifecycle, Dispatch: dispatch, Users: users}
}

// POST /marksheets/:id/respond — HOD approves / rejects / reschedules.
func (ctrl *DispatchController) HodRespond(c *fiber.Ctx) error {
	var body dto.HodRespondRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(body); err != nil {
		return helper.ValidationError(c, err)
	}

	hod := model.ActorSnapshot{}
	hod.ID, _ = c.Locals("user_id").(string)
	hod.Name, _ = c.Locals("userName").(string)
	hod.Email, _ = c.Locals("userEmail").(string)
	if user, err := ctrl.Users.FindByID(c.UserContext(), hod.ID); err == nil {
		hod.Name = user.Name
		hod.Email = user.Email
		hod.SignatureImage = user.SignatureImage
	}

	m, err := ctrl.Lifecycle.HodRespond(c.UserContext(), c.Params("id"), hod, body.Response, body.Comments, body.ScheduledDispatchDate)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.Success(c, "Response recorded", m)
}

// POST /marksheets/:id/dispatch — manual single send.
func (ctrl *DispatchController) Send(c *fiber.Ctx) error {
	m, err := ctrl.Dispatch.Send(c.UserContext(), c.Params("id"))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.Success(c, "Marksheet dispatched", m)
}

// POST /marksheets/dispatch-bulk — paced batch send with per-record
// isolation; always returns the partial-failure breakdown.
func (ctrl *DispatchController) SendBulk(c *fiber.Ctx) error {
	var body dto.BulkDispatchRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(body); err != nil {
		return helper.ValidationError(c, err)
	}

	res := ctrl.Dispatch.SendBulk(c.UserContext(), body.IDs)
	return helper.Success(c, "Bulk dispatch finished", res)
}
