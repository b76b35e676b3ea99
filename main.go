package main

import (
	"log"

	"github.com/abaraemmanuel62/Crypto-Payroll-Disbursement/config"
	"github.com/abaraemmanuel62/Crypto-Payroll-Disbursement/handlers"
	"github.com/abaraemmanuel62/Crypto-Payroll-Disbursement/middleware"
	"github.com/abaraemmanuel62/Crypto-Payroll-Disbursement/services"
	"github.com/abaraemmanuel62/Crypto-Payroll-Disbursement/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func initServices() error {
	db, err := gorm.Open(sqlite.Open(config.AppConfig.DBPath), &gorm.Config{})
	if err != nil {
		return err
	}

	chain := services.NewICPChainClient(config.AppConfig.ICPHost, config.AppConfig.CanisterID)

	engine, err := services.NewPayrollEngine(db, chain, config.AppConfig.OwnerPrincipal)
	if err != nil {
		return err
	}

	handlers.InitHandlers(engine, chain)
	return nil
}

func main() {
	config.LoadConfig()
	utils.InitLogger()

	if err := initServices(); err != nil {
		log.Fatal("Failed to initialize services:", err)
	}

	app := fiber.New()

	app.Post("/auth/login", handlers.OwnerLogin)

	// Owner-gated transitions
	app.Post("/employees", middleware.RequireAuth, handlers.AddEmployee)
	app.Patch("/employees/:id/salary", middleware.RequireAuth, handlers.UpdateSalary)
	app.Delete("/employees/:id", middleware.RequireAuth, handlers.DeactivateEmployee)
	app.Post("/employees/:id/payments", middleware.RequireAuth, handlers.ProcessPayment)
	app.Post("/employees/:id/bonus", middleware.RequireAuth, handlers.SetBonus)
	app.Post("/treasury/fund", middleware.RequireAuth, handlers.FundTreasury)
	app.Post("/schedules", middleware.RequireAuth, handlers.CreateSchedule)
	app.Post("/schedules/:id/execute", middleware.RequireAuth, handlers.ExecuteSchedule)
	app.Post("/departments/:dept/payroll", middleware.RequireAuth, handlers.ProcessDepartmentPayroll)

	// Read-only projections, no authorization
	app.Get("/employees/count", handlers.GetEmployeeCount)
	app.Get("/employees/:id", handlers.GetEmployee)
	app.Get("/employees/:id/next-payment", handlers.GetNextPayment)
	app.Get("/employees/:id/payment-due", handlers.IsPaymentDue)
	app.Get("/treasury", handlers.GetTreasuryBalance)

	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
