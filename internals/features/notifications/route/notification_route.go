package route

import (
	"github.com/gofiber/fiber/v2"

	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/notifications/controller"
)

// NotificationRoutes mounts the inbox + subscription endpoints under an
// authenticated group.
func NotificationRoutes(group fiber.Router, ctrl *controller.NotificationController) {
	n := group.Group("/notifications")
	n.Get("/", ctrl.List)
	n.Post("/subscribe", ctrl.Subscribe)
	n.Post("/unsubscribe", ctrl.Unsubscribe)
	n.Patch("/:id/read", ctrl.MarkRead)
}
