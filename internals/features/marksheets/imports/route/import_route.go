package route

import (
	"github.com/gofiber/fiber/v2"

	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/marksheets/imports/controller"
)

func ImportRoutes(group fiber.Router, ctrl *controller.ImportController) {
	group.Post("/marksheets/import", ctrl.Upload)
}
