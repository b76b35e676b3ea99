package handlers

import (
	"github.com/abaraemmanuel62/Crypto-Payroll-Disbursement/middleware"
	"github.com/abaraemmanuel62/Crypto-Payroll-Disbursement/types"

	"github.com/gofiber/fiber/v2"
)

type AddEmployeeRequest struct {
	WalletAddress string `json:"wallet_address" validate:"required"`
	AnnualSalary  int64  `json:"annual_salary" validate:"required,gt=0"`
	Role          string `json:"role" validate:"required"`
	Department    string `json:"department" validate:"required"`
	PayFrequency  string `json:"pay_frequency" validate:"required,oneof=weekly biweekly monthly"`
}

type UpdateSalaryRequest struct {
	AnnualSalary int64 `json:"annual_salary" validate:"required,gt=0"`
}

func AddEmployee(c *fiber.Ctx) error {
	var req AddEmployeeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(types.APIResponse{
			Success: false,
			Error:   types.ErrInvalidInput,
		})
	}

	height, ok := currentHeight(c)
	if !ok {
		return nil
	}

	id, err := Engine.AddEmployee(middleware.Principal(c), req.WalletAddress,
		req.AnnualSalary, req.Role, req.Department, req.PayFrequency, height)
	if err != nil {
		return respondEngineError(c, err)
	}

	return c.JSON(types.APIResponse{
		Success: true,
		Message: "Employee added successfully",
		Data:    map[string]interface{}{"employee_id": id},
	})
}

func UpdateSalary(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.Status(400).JSON(types.APIResponse{
			Success: false,
			Error:   "Invalid employee ID",
		})
	}

	var req UpdateSalaryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(types.APIResponse{
			Success: false,
			Error:   types.ErrInvalidInput,
		})
	}

	salary, err := Engine.UpdateSalary(middleware.Principal(c), id, req.AnnualSalary)
	if err != nil {
		return respondEngineError(c, err)
	}

	return c.JSON(types.APIResponse{
		Success: true,
		Message: "Salary updated successfully",
		Data:    map[string]interface{}{"annual_salary": salary},
	})
}

func DeactivateEmployee(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.Status(400).JSON(types.APIResponse{
			Success: false,
			Error:   "Invalid employee ID",
		})
	}

	if err := Engine.DeactivateEmployee(middleware.Principal(c), id); err != nil {
		return respondEngineError(c, err)
	}

	return c.JSON(types.APIResponse{
		Success: true,
		Message: "Employee deactivated",
	})
}

func GetEmployee(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.Status(400).JSON(types.APIResponse{
			Success: false,
			Error:   "Invalid employee ID",
		})
	}

	employee, err := Engine.GetEmployee(id)
	if err != nil {
		return respondEngineError(c, err)
	}
	if employee == nil {
		return c.Status(404).JSON(types.APIResponse{
			Success: false,
			Error:   "Employee not found",
		})
	}

	return c.JSON(types.APIResponse{
		Success: true,
		Data:    employee,
	})
}

func GetEmployeeCount(c *fiber.Ctx) error {
	count, err := Engine.EmployeeCount()
	if err != nil {
		return respondEngineError(c, err)
	}

	return c.JSON(types.APIResponse{
		Success: true,
		Data:    map[string]interface{}{"count": count},
	})
}
