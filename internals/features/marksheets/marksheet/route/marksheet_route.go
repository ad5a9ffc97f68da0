package route

import (
	"github.com/gofiber/fiber/v2"

	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/constants"
	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/marksheets/marksheet/controller"
	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/middlewares"
	authmw "github.com/princekumar-dev/MSEC-Academics-sub001/internals/middlewares/auth"
)

// StaffMarksheetRoutes: entry, verification, dispatch requests, manual sends.
func StaffMarksheetRoutes(group fiber.Router, ms *controller.MarksheetController, ds *controller.DispatchController) {
	r := group.Group("/marksheets")
	r.Post("/", ms.Create)
	r.Get("/", ms.List)
	r.Get("/:id", ms.Get)
	r.Put("/:id/subjects", ms.UpdateSubjects)
	r.Post("/:id/verify", ms.Verify)
	r.Post("/:id/request-dispatch", ms.RequestDispatch)
	r.Post("/:id/dispatch", middlewares.DispatchRateLimiter(), ds.Send)
	r.Post("/dispatch-bulk", middlewares.DispatchRateLimiter(), ds.SendBulk)
}

// HodMarksheetRoutes: the approval surface.
func HodMarksheetRoutes(group fiber.Router, ms *controller.MarksheetController, ds *controller.DispatchController) {
	r := group.Group("/marksheets",
		authmw.RoleMiddlewareWithCustomError(constants.ApproverRoles, constants.RoleErrorHod("dispatch approval")))
	r.Get("/", ms.List)
	r.Get("/:id", ms.Get)
	r.Post("/:id/respond", ds.HodRespond)
}

// AdminSchedulerRoutes: manual scheduler triggers + flag resets.
func AdminSchedulerRoutes(group fiber.Router, ms *controller.MarksheetController, sc *controller.SchedulerController) {
	r := group.Group("/",
		authmw.RoleMiddlewareWithCustomError([]string{constants.RoleAdmin}, constants.RoleErrorAdmin("scheduler control")))
	r.Post("/scheduler/check-upcoming", sc.RunUpcoming)
	r.Post("/scheduler/process-due", sc.RunDue)
	r.Post("/scheduler/run-all", sc.RunAll)
	r.Post("/marksheets/:id/reset-auto-dispatch", ms.ResetAutoDispatch)
}
