package handlers

import (
	"time"

	"github.com/abaraemmanuel62/Crypto-Payroll-Disbursement/config"
	"github.com/abaraemmanuel62/Crypto-Payroll-Disbursement/types"
	"github.com/abaraemmanuel62/Crypto-Payroll-Disbursement/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	Principal  string `json:"principal" validate:"required"`
	Passphrase string `json:"passphrase" validate:"required"`
}

// OwnerLogin exchanges the owner passphrase for a bearer token carrying the
// owner principal.
func OwnerLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(types.APIResponse{
			Success: false,
			Error:   types.ErrInvalidInput,
		})
	}

	if req.Principal != config.AppConfig.OwnerPrincipal {
		return c.Status(401).JSON(types.APIResponse{
			Success: false,
			Error:   "Invalid credentials",
		})
	}
	if err := bcrypt.CompareHashAndPassword(
		[]byte(config.AppConfig.OwnerPassHash), []byte(req.Passphrase)); err != nil {
		return c.Status(401).JSON(types.APIResponse{
			Success: false,
			Error:   "Invalid credentials",
		})
	}

	expiry, err := time.ParseDuration(config.AppConfig.TokenExpiryDuration)
	if err != nil {
		expiry = 24 * time.Hour
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"principal": req.Principal,
		"role":      "owner",
		"jti":       uuid.NewString(),
		"exp":       time.Now().Add(expiry).Unix(),
	})

	signed, err := token.SignedString([]byte(config.AppConfig.JWTSecret))
	if err != nil {
		utils.Logger.Error("Failed to sign token", zap.Error(err))
		return c.Status(500).JSON(types.APIResponse{
			Success: false,
			Error:   types.ErrInternalError,
		})
	}

	return c.JSON(types.APIResponse{
		Success: true,
		Data:    map[string]interface{}{"token": signed},
	})
}
