package handlers

import (
	"errors"
	"strconv"

	"github.com/abaraemmanuel62/Crypto-Payroll-Disbursement/services"
	"github.com/abaraemmanuel62/Crypto-Payroll-Disbursement/types"
	"github.com/abaraemmanuel62/Crypto-Payroll-Disbursement/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var (
	Engine *services.PayrollEngine
	Chain  services.ChainClient
)

func InitHandlers(engine *services.PayrollEngine, chain services.ChainClient) {
	Engine = engine
	Chain = chain
}

// currentHeight asks the chain for the logical clock every transition runs
// against. On failure the 502 response has already been written.
func currentHeight(c *fiber.Ctx) (uint64, bool) {
	height, err := Chain.CurrentHeight(c.Context())
	if err != nil {
		utils.Logger.Error("Failed to fetch block height", zap.Error(err))
		c.Status(502).JSON(types.APIResponse{
			Success: false,
			Error:   types.ErrChainError,
		})
		return 0, false
	}
	return height, true
}

func parseID(c *fiber.Ctx, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// respondEngineError maps ledger error codes onto HTTP statuses. Anything
// outside the taxonomy is a 500.
func respondEngineError(c *fiber.Ctx, err error) error {
	var perr *types.PayrollError
	if errors.As(err, &perr) {
		status := 500
		switch perr.Code {
		case types.CodeUnauthorized:
			status = 403
		case types.CodeEmployeeNotFound:
			status = 404
		case types.CodeInvalidAmount:
			status = 400
		case types.CodeInsufficientFunds:
			status = 402
		}
		return c.Status(status).JSON(types.APIResponse{
			Success: false,
			Error:   perr.Error(),
			Code:    perr.Code,
		})
	}

	utils.Logger.Error("Ledger transition failed", zap.Error(err))
	return c.Status(500).JSON(types.APIResponse{
		Success: false,
		Error:   types.ErrInternalError,
	})
}
