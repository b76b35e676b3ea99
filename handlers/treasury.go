package handlers

import (
	"github.com/abaraemmanuel62/Crypto-Payroll-Disbursement/middleware"
	"github.com/abaraemmanuel62/Crypto-Payroll-Disbursement/types"

	"github.com/gofiber/fiber/v2"
)

type FundTreasuryRequest struct {
	Amount uint64 `json:"amount"`
}

func FundTreasury(c *fiber.Ctx) error {
	var req FundTreasuryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(types.APIResponse{
			Success: false,
			Error:   types.ErrInvalidInput,
		})
	}

	balance, err := Engine.FundTreasury(c.Context(), middleware.Principal(c), req.Amount)
	if err != nil {
		return respondEngineError(c, err)
	}

	return c.JSON(types.APIResponse{
		Success: true,
		Message: "Treasury funded successfully",
		Data:    map[string]interface{}{"balance": balance},
	})
}

func GetTreasuryBalance(c *fiber.Ctx) error {
	balance, err := Engine.TreasuryBalance()
	if err != nil {
		return respondEngineError(c, err)
	}

	return c.JSON(types.APIResponse{
		Success: true,
		Data:    map[string]interface{}{"balance": balance},
	})
}
