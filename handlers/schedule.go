package handlers

import (
	"github.com/abaraemmanuel62/Crypto-Payroll-Disbursement/middleware"
	"github.com/abaraemmanuel62/Crypto-Payroll-Disbursement/types"

	"github.com/gofiber/fiber/v2"
)

type CreateScheduleRequest struct {
	Name             string `json:"name" validate:"required"`
	Frequency        string `json:"frequency" validate:"required"`
	NextExecution    uint64 `json:"next_execution"`
	DepartmentFilter string `json:"department_filter"`
}

func CreateSchedule(c *fiber.Ctx) error {
	var req CreateScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(types.APIResponse{
			Success: false,
			Error:   types.ErrInvalidInput,
		})
	}

	id, err := Engine.CreateSchedule(middleware.Principal(c), req.Name,
		req.Frequency, req.NextExecution, req.DepartmentFilter)
	if err != nil {
		return respondEngineError(c, err)
	}

	return c.JSON(types.APIResponse{
		Success: true,
		Message: "Schedule created successfully",
		Data:    map[string]interface{}{"schedule_id": id},
	})
}

func ExecuteSchedule(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.Status(400).JSON(types.APIResponse{
			Success: false,
			Error:   "Invalid schedule ID",
		})
	}

	height, ok := currentHeight(c)
	if !ok {
		return nil
	}

	if err := Engine.ExecuteSchedule(middleware.Principal(c), id, height); err != nil {
		return respondEngineError(c, err)
	}

	return c.JSON(types.APIResponse{
		Success: true,
		Message: "Schedule executed",
	})
}

// ProcessDepartmentPayroll authorizes and stops; per-department bulk payout
// arrives together with schedule execution.
func ProcessDepartmentPayroll(c *fiber.Ctx) error {
	department := c.Params("dept")
	if department == "" {
		return c.Status(400).JSON(types.APIResponse{
			Success: false,
			Error:   "Invalid department",
		})
	}

	if err := Engine.ProcessDepartmentPayroll(middleware.Principal(c), department); err != nil {
		return respondEngineError(c, err)
	}

	return c.JSON(types.APIResponse{
		Success: true,
		Message: "Not implemented",
	})
}
