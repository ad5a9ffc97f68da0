package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/configs"
	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/constants"
	importctrl "github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/marksheets/imports/controller"
	importroute "github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/marksheets/imports/route"
	marksheetctrl "github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/marksheets/marksheet/controller"
	marksheetroute "github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/marksheets/marksheet/route"
	notifctrl "github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/notifications/controller"
	notifroute "github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/notifications/route"
	userctrl "github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/users/controller"
	userroute "github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/users/route"
	authmw "github.com/princekumar-dev/MSEC-Academics-sub001/internals/middlewares/auth"
)

var startTime time.Time

// Controllers bundles everything the route tree mounts.
type Controllers struct {
	Auth         *userctrl.AuthController
	Marksheet    *marksheetctrl.MarksheetController
	Dispatch     *marksheetctrl.DispatchController
	Scheduler    *marksheetctrl.SchedulerController
	Import       *importctrl.ImportController
	Notification *notifctrl.NotificationController
}

// SetupRoutes mounts every feature.
func SetupRoutes(app *fiber.App, ctrls Controllers) {
	startTime = time.Now()

	log.Println("[INFO] Setting up AuthRoutes...")
	userroute.AuthRoutes(app, ctrls.Auth)

	// Rendered marksheet documents served to WhatsApp media fetches.
	app.Static("/documents", configs.GetEnv("DOCUMENTS_DIR", "./public/documents"))

	// ===================== STAFF =====================
	log.Println("[INFO] Setting up STAFF group...")
	staff := app.Group("/api/staff", authmw.AuthMiddleware(),
		authmw.RoleMiddlewareWithCustomError([]string{constants.RoleStaff, constants.RoleAdmin},
			constants.RoleErrorStaff("marksheet entry")))
	marksheetroute.StaffMarksheetRoutes(staff, ctrls.Marksheet, ctrls.Dispatch)
	importroute.ImportRoutes(staff, ctrls.Import)

	// ===================== HOD =====================
	log.Println("[INFO] Setting up HOD group...")
	hod := app.Group("/api/hod", authmw.AuthMiddleware())
	marksheetroute.HodMarksheetRoutes(hod, ctrls.Marksheet, ctrls.Dispatch)

	// ===================== ADMIN =====================
	log.Println("[INFO] Setting up ADMIN group...")
	admin := app.Group("/api/admin", authmw.AuthMiddleware())
	marksheetroute.AdminSchedulerRoutes(admin, ctrls.Marksheet, ctrls.Scheduler)

	// ===================== NOTIFICATIONS =====================
	log.Println("[INFO] Setting up NOTIFICATION routes...")
	private := app.Group("/api", authmw.AuthMiddleware(), authmw.RequireRoles(constants.AllRoles...))
	notifroute.NotificationRoutes(private, ctrls.Notification)

	app.Get("/uptime", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"uptime": time.Since(startTime).String()})
	})
}
