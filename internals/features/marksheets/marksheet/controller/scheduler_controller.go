package controller

import (
	"github.com/gofiber/fiber/v2"

	helper "github.com/princekumar-dev/MSEC-Academics-sub001/internals/helpers"

	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/marksheets/marksheet/scheduler"
)

// SchedulerController is the operator control surface over the background
// sweeps: run either one now, or both.
type SchedulerController struct {
	Scheduler *scheduler.DispatchScheduler
}

func NewSchedulerController(s *scheduler.DispatchScheduler) *SchedulerController {
	return &SchedulerController{Scheduler: s}
}

// POST /scheduler/check-upcoming
func (ctrl *SchedulerController) RunUpcoming(c *fiber.Ctx) error {
	report, err := ctrl.Scheduler.CheckUpcomingDispatches(c.UserContext())
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.Success(c, "Upcoming-dispatch sweep finished", report)
}

// POST /scheduler/process-due
func (ctrl *SchedulerController) RunDue(c *fiber.Ctx) error {
	report, err := ctrl.Scheduler.ProcessScheduledDispatches(c.UserContext())
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.Success(c, "Due-dispatch sweep finished", report)
}

// POST /scheduler/run-all
func (ctrl *SchedulerController) RunAll(c *fiber.Ctx) error {
	upcoming, due, err := ctrl.Scheduler.RunAllNow(c.UserContext())
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.Success(c, "Scheduler sweeps finished", fiber.Map{
		"upcoming": upcoming,
		"due":      due,
	})
}
