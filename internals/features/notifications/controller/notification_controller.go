package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	helper "github.com/princekumar-dev/MSEC-Academics-sub001/internals/helpers"

	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/notifications/dto"
	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/notifications/model"
	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/notifications/repository"
)

var validate = validator.New()

type NotificationController struct {
	Repo *repository.NotificationRepository
}

func NewNotificationController(repo *repository.NotificationRepository) *NotificationController {
	return &NotificationController{Repo: repo}
}

func callerEmail(c *fiber.Ctx) string {
	email, _ := c.Locals("userEmail").(string)
	return email
}

// POST /subscribe — register the browser push subscription of the caller.
func (ctrl *NotificationController) Subscribe(c *fiber.Ctx) error {
	var body dto.SubscribeRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(body); err != nil {
		return helper.ValidationError(c, err)
	}

	sub := &model.PushSubscription{
		UserEmail: callerEmail(c),
		Endpoint:  body.Endpoint,
		Keys: model.SubscriptionKeys{
			P256dh: body.Keys.P256dh,
			Auth:   body.Keys.Auth,
		},
	}
	if err := ctrl.Repo.SaveSubscription(c.UserContext(), sub); err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to save subscription")
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Subscribed to push notifications", nil)
}

// POST /unsubscribe
func (ctrl *NotificationController) Unsubscribe(c *fiber.Ctx) error {
	var body dto.UnsubscribeRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(body); err != nil {
		return helper.ValidationError(c, err)
	}
	if err := ctrl.Repo.DeactivateSubscription(c.UserContext(), body.Endpoint); err != nil {
		return helper.Error(c, fiber.StatusNotFound, "Subscription not found")
	}
	return helper.Success(c, "Unsubscribed", nil)
}

// GET / — the caller's notification inbox.
func (ctrl *NotificationController) List(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, 20, 100)
	items, total, err := ctrl.Repo.ListByUser(c.UserContext(), callerEmail(c), paging.Offset, paging.Limit)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to load notifications")
	}
	return helper.SuccessWithPagination(c, "Notifications", items, helper.BuildPagination(paging, total, len(items)))
}

// PATCH /:id/read
func (ctrl *NotificationController) MarkRead(c *fiber.Ctx) error {
	if err := ctrl.Repo.MarkRead(c.UserContext(), callerEmail(c), c.Params("id")); err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.Success(c, "Notification marked as read", nil)
}
