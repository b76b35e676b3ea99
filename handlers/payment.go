package handlers

import (
	"github.com/abaraemmanuel62/Crypto-Payroll-Disbursement/middleware"
	"github.com/abaraemmanuel62/Crypto-Payroll-Disbursement/types"

	"github.com/gofiber/fiber/v2"
)

type ProcessPaymentRequest struct {
	Bonus      int64 `json:"bonus"`
	Deductions int64 `json:"deductions"`
}

type SetBonusRequest struct {
	Amount int64 `json:"amount" validate:"required"`
}

func ProcessPayment(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.Status(400).JSON(types.APIResponse{
			Success: false,
			Error:   "Invalid employee ID",
		})
	}

	var req ProcessPaymentRequest
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

	amount, err := Engine.ProcessPayment(c.Context(), middleware.Principal(c),
		id, req.Bonus, req.Deductions, height)
	if err != nil {
		return respondEngineError(c, err)
	}

	return c.JSON(types.APIResponse{
		Success: true,
		Message: "Payment processed successfully",
		Data:    map[string]interface{}{"amount": amount},
	})
}

func GetNextPayment(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.Status(400).JSON(types.APIResponse{
			Success: false,
			Error:   "Invalid employee ID",
		})
	}

	amount, err := Engine.NextPayment(id)
	if err != nil {
		return respondEngineError(c, err)
	}

	return c.JSON(types.APIResponse{
		Success: true,
		Data:    map[string]interface{}{"next_payment": amount},
	})
}

func IsPaymentDue(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.Status(400).JSON(types.APIResponse{
			Success: false,
			Error:   "Invalid employee ID",
		})
	}

	height, ok := currentHeight(c)
	if !ok {
		return nil
	}

	due, err := Engine.IsPaymentDue(id, height)
	if err != nil {
		return respondEngineError(c, err)
	}

	return c.JSON(types.APIResponse{
		Success: true,
		Data:    map[string]interface{}{"due": due},
	})
}

// SetBonus validates but does not yet persist; bonus persistence lands with
// bulk payroll execution.
func SetBonus(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.Status(400).JSON(types.APIResponse{
			Success: false,
			Error:   "Invalid employee ID",
		})
	}

	var req SetBonusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(types.APIResponse{
			Success: false,
			Error:   types.ErrInvalidInput,
		})
	}

	if err := Engine.SetBonus(middleware.Principal(c), id, req.Amount); err != nil {
		return respondEngineError(c, err)
	}

	return c.JSON(types.APIResponse{
		Success: true,
		Message: "Not implemented",
	})
}
