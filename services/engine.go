package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/abaraemmanuel62/Crypto-Payroll-Disbursement/models"
	"github.com/abaraemmanuel62/Crypto-Payroll-Disbursement/types"
	"github.com/abaraemmanuel62/Crypto-Payroll-Disbursement/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PayrollEngine is the ledger state machine. Every mutating call stages all
// of its checks, invokes the chain transfer where one is involved, and only
// then commits; a rejection at any step rolls the whole transaction back.
// The mutex keeps transitions one-at-a-time even though Fiber runs handlers
// concurrently.
type PayrollEngine struct {
	db    *gorm.DB
	chain ChainClient
	mu    sync.Mutex
}

func NewPayrollEngine(db *gorm.DB, chain ChainClient, owner string) (*PayrollEngine, error) {
	if err := db.AutoMigrate(&models.Employee{}, &models.Payment{}, &models.Schedule{}, &models.LedgerState{}); err != nil {
		return nil, fmt.Errorf("failed to migrate ledger schema: %w", err)
	}

	state := models.LedgerState{
		ID:             1,
		Owner:          owner,
		NextEmployeeID: 1,
		NextPaymentID:  1,
		NextScheduleID: 1,
	}
	if err := db.Where("id = ?", 1).FirstOrCreate(&state).Error; err != nil {
		return nil, fmt.Errorf("failed to initialize ledger state: %w", err)
	}

	return &PayrollEngine{db: db, chain: chain}, nil
}

func loadState(tx *gorm.DB) (*models.LedgerState, error) {
	var state models.LedgerState
	if err := tx.First(&state, "id = ?", 1).Error; err != nil {
		return nil, fmt.Errorf("failed to load ledger state: %w", err)
	}
	return &state, nil
}

func authorize(state *models.LedgerState, caller string) error {
	if caller != state.Owner {
		return types.NewError(types.CodeUnauthorized, "caller is not the payroll owner")
	}
	return nil
}

// AddEmployee registers a new employee and returns its id. Ids start at 1
// and are never reused; a rejected call does not consume one.
func (e *PayrollEngine) AddEmployee(caller, wallet string, annualSalary int64, role, department, frequency string, now uint64) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	tx := e.db.Begin()
	state, err := loadState(tx)
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	if err := authorize(state, caller); err != nil {
		tx.Rollback()
		return 0, err
	}
	if annualSalary <= 0 {
		tx.Rollback()
		return 0, types.NewError(types.CodeInvalidAmount, "annual salary must be positive")
	}

	employee := models.Employee{
		ID:            state.NextEmployeeID,
		WalletAddress: wallet,
		AnnualSalary:  annualSalary,
		HourlyRate:    HourlyRate(annualSalary),
		Role:          role,
		Department:    department,
		StartDate:     now,
		PayFrequency:  frequency,
		Active:        true,
		LastPayment:   0,
	}
	if err := tx.Create(&employee).Error; err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to create employee: %w", err)
	}

	state.NextEmployeeID++
	if err := tx.Save(state).Error; err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to advance employee counter: %w", err)
	}
	if err := tx.Commit().Error; err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return employee.ID, nil
}

// ProcessPayment pays one employee one period's salary, net of bonus and
// deductions, and returns the amount moved. An inactive employee is
// reported as EmployeeNotFound, same as a missing one.
func (e *PayrollEngine) ProcessPayment(ctx context.Context, caller string, employeeID uint64, bonus, deductions int64, now uint64) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	tx := e.db.Begin()
	state, err := loadState(tx)
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	if err := authorize(state, caller); err != nil {
		tx.Rollback()
		return 0, err
	}

	var employee models.Employee
	if err := tx.First(&employee, "id = ? AND active = ?", employeeID, true).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, types.NewError(types.CodeEmployeeNotFound, "no active employee with that id")
		}
		return 0, fmt.Errorf("failed to look up employee: %w", err)
	}

	base := PeriodSalary(employee.AnnualSalary, employee.PayFrequency)
	total := base + bonus - deductions
	if total < 0 {
		tx.Rollback()
		return 0, types.NewError(types.CodeInvalidAmount, "deductions exceed pay for the period")
	}
	if state.TreasuryBalance < total {
		tx.Rollback()
		return 0, types.NewError(types.CodeInsufficientFunds, "treasury balance too low")
	}

	// The transfer has to land before any bookkeeping commits.
	txRef, err := e.chain.PaySalary(ctx, employee.WalletAddress, uint64(total))
	if err != nil {
		tx.Rollback()
		utils.Logger.Error("Salary transfer failed",
			zap.Uint64("employee_id", employeeID), zap.Error(err))
		return 0, fmt.Errorf("salary transfer failed: %w", err)
	}

	payment := models.Payment{
		EmployeeID:  employeeID,
		PaymentID:   state.NextPaymentID,
		Amount:      total,
		Bonus:       bonus,
		Deductions:  deductions,
		PaidAt:      now,
		PeriodStart: employee.LastPayment,
		PeriodEnd:   now,
		TxRef:       txRef,
	}
	if err := tx.Create(&payment).Error; err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to record payment: %w", err)
	}
	if err := tx.Model(&employee).Update("last_payment", now).Error; err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to update last payment: %w", err)
	}

	state.TreasuryBalance -= total
	state.NextPaymentID++
	if err := tx.Save(state).Error; err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to update treasury: %w", err)
	}
	if err := tx.Commit().Error; err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return total, nil
}

// FundTreasury credits the treasury and returns the new balance. Any
// amount is accepted, including zero.
func (e *PayrollEngine) FundTreasury(ctx context.Context, caller string, amount uint64) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	tx := e.db.Begin()
	state, err := loadState(tx)
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	if err := authorize(state, caller); err != nil {
		tx.Rollback()
		return 0, err
	}

	txRef, err := e.chain.FundTreasury(ctx, amount)
	if err != nil {
		tx.Rollback()
		utils.Logger.Error("Treasury funding failed", zap.Error(err))
		return 0, fmt.Errorf("treasury funding failed: %w", err)
	}

	state.TreasuryBalance += int64(amount)
	if err := tx.Save(state).Error; err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to update treasury: %w", err)
	}
	if err := tx.Commit().Error; err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}

	utils.Logger.Info("Treasury funded",
		zap.Uint64("amount", amount),
		zap.Int64("balance", state.TreasuryBalance),
		zap.String("tx_ref", txRef))
	return state.TreasuryBalance, nil
}

// UpdateSalary overwrites an employee's annual salary and rederives the
// hourly rate. Lookup is by existence only; a deactivated employee can
// still have its salary updated.
func (e *PayrollEngine) UpdateSalary(caller string, employeeID uint64, newSalary int64) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	tx := e.db.Begin()
	state, err := loadState(tx)
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	if err := authorize(state, caller); err != nil {
		tx.Rollback()
		return 0, err
	}
	if newSalary <= 0 {
		tx.Rollback()
		return 0, types.NewError(types.CodeInvalidAmount, "annual salary must be positive")
	}

	var employee models.Employee
	if err := tx.First(&employee, "id = ?", employeeID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, types.NewError(types.CodeEmployeeNotFound, "no employee with that id")
		}
		return 0, fmt.Errorf("failed to look up employee: %w", err)
	}

	updates := map[string]interface{}{
		"annual_salary": newSalary,
		"hourly_rate":   HourlyRate(newSalary),
	}
	if err := tx.Model(&employee).Updates(updates).Error; err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to update salary: %w", err)
	}
	if err := tx.Commit().Error; err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return newSalary, nil
}

// DeactivateEmployee clears the active flag. There is no reactivation, and
// deactivating twice is not an error.
func (e *PayrollEngine) DeactivateEmployee(caller string, employeeID uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	tx := e.db.Begin()
	state, err := loadState(tx)
	if err != nil {
		tx.Rollback()
		return err
	}
	if err := authorize(state, caller); err != nil {
		tx.Rollback()
		return err
	}

	var employee models.Employee
	if err := tx.First(&employee, "id = ?", employeeID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.NewError(types.CodeEmployeeNotFound, "no employee with that id")
		}
		return fmt.Errorf("failed to look up employee: %w", err)
	}

	if err := tx.Model(&employee).Update("active", false).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to deactivate employee: %w", err)
	}
	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// CreateSchedule registers a recurring payroll schedule and returns its id.
func (e *PayrollEngine) CreateSchedule(caller, name, frequency string, nextExecution uint64, departmentFilter string) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	tx := e.db.Begin()
	state, err := loadState(tx)
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	if err := authorize(state, caller); err != nil {
		tx.Rollback()
		return 0, err
	}

	schedule := models.Schedule{
		ID:               state.NextScheduleID,
		Name:             name,
		Frequency:        frequency,
		NextExecution:    nextExecution,
		DepartmentFilter: departmentFilter,
		Active:           true,
	}
	if err := tx.Create(&schedule).Error; err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to create schedule: %w", err)
	}

	state.NextScheduleID++
	if err := tx.Save(state).Error; err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to advance schedule counter: %w", err)
	}
	if err := tx.Commit().Error; err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return schedule.ID, nil
}

// ExecuteSchedule validates that the schedule exists, is active, and is due.
// It pays nobody and advances nothing; bulk execution is a planned follow-up
// and this is its reserved entry point. The error codes mirror the on-chain
// contract: a missing schedule reports EmployeeNotFound and an inactive or
// not-yet-due one reports Unauthorized.
func (e *PayrollEngine) ExecuteSchedule(caller string, scheduleID uint64, now uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	state, err := loadState(e.db)
	if err != nil {
		return err
	}
	if err := authorize(state, caller); err != nil {
		return err
	}

	var schedule models.Schedule
	if err := e.db.First(&schedule, "id = ?", scheduleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.NewError(types.CodeEmployeeNotFound, "no schedule with that id")
		}
		return fmt.Errorf("failed to look up schedule: %w", err)
	}
	if !schedule.Active || now < schedule.NextExecution {
		return types.NewError(types.CodeUnauthorized, "schedule inactive or not yet due")
	}
	return nil
}

// ProcessDepartmentPayroll is a reserved extension point: it authorizes the
// caller and stops there.
func (e *PayrollEngine) ProcessDepartmentPayroll(caller, department string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	state, err := loadState(e.db)
	if err != nil {
		return err
	}
	return authorize(state, caller)
}

// SetBonus is a reserved extension point: it validates the caller and the
// employee and persists nothing.
func (e *PayrollEngine) SetBonus(caller string, employeeID uint64, amount int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	state, err := loadState(e.db)
	if err != nil {
		return err
	}
	if err := authorize(state, caller); err != nil {
		return err
	}

	var employee models.Employee
	if err := e.db.First(&employee, "id = ?", employeeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.NewError(types.CodeEmployeeNotFound, "no employee with that id")
		}
		return fmt.Errorf("failed to look up employee: %w", err)
	}
	return nil
}

// GetEmployee returns the employee record, or nil if the id was never
// allocated. Read-only, no authorization.
func (e *PayrollEngine) GetEmployee(employeeID uint64) (*models.Employee, error) {
	var employee models.Employee
	if err := e.db.First(&employee, "id = ?", employeeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up employee: %w", err)
	}
	return &employee, nil
}

// EmployeeCount reports how many ids have ever been allocated, including
// deactivated employees.
func (e *PayrollEngine) EmployeeCount() (uint64, error) {
	state, err := loadState(e.db)
	if err != nil {
		return 0, err
	}
	return state.NextEmployeeID - 1, nil
}

func (e *PayrollEngine) TreasuryBalance() (int64, error) {
	state, err := loadState(e.db)
	if err != nil {
		return 0, err
	}
	return state.TreasuryBalance, nil
}

// NextPayment returns the gross amount the employee's next paycheck would
// carry, or 0 for an unknown id.
func (e *PayrollEngine) NextPayment(employeeID uint64) (int64, error) {
	employee, err := e.GetEmployee(employeeID)
	if err != nil {
		return 0, err
	}
	if employee == nil {
		return 0, nil
	}
	return PeriodSalary(employee.AnnualSalary, employee.PayFrequency), nil
}

// IsPaymentDue reports whether enough blocks have elapsed since the last
// payment for the employee's frequency. Unknown ids and unknown
// frequencies are never due.
func (e *PayrollEngine) IsPaymentDue(employeeID uint64, now uint64) (bool, error) {
	employee, err := e.GetEmployee(employeeID)
	if err != nil {
		return false, err
	}
	if employee == nil {
		return false, nil
	}
	threshold, ok := DueThreshold(employee.PayFrequency)
	if !ok {
		return false, nil
	}
	return now-employee.LastPayment >= threshold, nil
}
