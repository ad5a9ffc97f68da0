package route

import (
	"github.com/gofiber/fiber/v2"

	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/users/controller"
	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/middlewares"
	authmw "github.com/princekumar-dev/MSEC-Academics-sub001/internals/middlewares/auth"
)

func AuthRoutes(app *fiber.App, ctrl *controller.AuthController) {
	a := app.Group("/api/auth")
	a.Post("/login", middlewares.LoginRateLimiter(), ctrl.Login)

	me := a.Group("/", authmw.AuthMiddleware())
	me.Get("/me", ctrl.Me)
	me.Post("/me/signature", ctrl.UploadSignature)
}
