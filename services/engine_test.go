package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/abaraemmanuel62/Crypto-Payroll-Disbursement/models"
	"github.com/abaraemmanuel62/Crypto-Payroll-Disbursement/types"
	"github.com/abaraemmanuel62/Crypto-Payroll-Disbursement/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testOwner = "aaaaa-aa-owner"

// stubChain stands in for the canister: it always has a height and either
// accepts or refuses transfers.
type stubChain struct {
	height   uint64
	failPay  bool
	failFund bool
	paid     []uint64
	funded   []uint64
}

func (s *stubChain) CurrentHeight(ctx context.Context) (uint64, error) {
	return s.height, nil
}

func (s *stubChain) PaySalary(ctx context.Context, wallet string, amount uint64) (string, error) {
	if s.failPay {
		return "", fmt.Errorf("canister rejected transfer")
	}
	s.paid = append(s.paid, amount)
	return fmt.Sprintf("tx-%d", len(s.paid)), nil
}

func (s *stubChain) FundTreasury(ctx context.Context, amount uint64) (string, error) {
	if s.failFund {
		return "", fmt.Errorf("canister rejected funding")
	}
	s.funded = append(s.funded, amount)
	return fmt.Sprintf("fund-%d", len(s.funded)), nil
}

func TestMain(m *testing.M) {
	utils.InitLogger()
	os.Exit(m.Run())
}

func newTestEngine(t *testing.T) (*PayrollEngine, *stubChain) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "payroll.db")), &gorm.Config{})
	require.NoError(t, err)

	chain := &stubChain{}
	engine, err := NewPayrollEngine(db, chain, testOwner)
	require.NoError(t, err)

	return engine, chain
}

func assertCode(t *testing.T, err error, code types.ErrorCode) {
	t.Helper()
	var perr *types.PayrollError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, code, perr.Code)
}

func TestAddEmployeeAssignsSequentialIDs(t *testing.T) {
	engine, _ := newTestEngine(t)

	for want := uint64(1); want <= 3; want++ {
		id, err := engine.AddEmployee(testOwner, fmt.Sprintf("wallet-%d", want),
			52000, "engineer", "IT", models.FrequencyWeekly, 10)
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}

	count, err := engine.EmployeeCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestAddEmployeeRejectsZeroSalary(t *testing.T) {
	engine, _ := newTestEngine(t)

	_, err := engine.AddEmployee(testOwner, "wallet-1", 0, "engineer", "IT", models.FrequencyWeekly, 10)
	assertCode(t, err, types.CodeInvalidAmount)

	_, err = engine.AddEmployee(testOwner, "wallet-1", -5, "engineer", "IT", models.FrequencyWeekly, 10)
	assertCode(t, err, types.CodeInvalidAmount)

	// The rejection must not consume an id.
	count, err := engine.EmployeeCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)

	id, err := engine.AddEmployee(testOwner, "wallet-1", 52000, "engineer", "IT", models.FrequencyWeekly, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)
}

func TestAddEmployeeStoresDerivedFields(t *testing.T) {
	engine, _ := newTestEngine(t)

	id, err := engine.AddEmployee(testOwner, "wallet-1", 104000, "engineer", "IT", models.FrequencyBiweekly, 42)
	require.NoError(t, err)

	employee, err := engine.GetEmployee(id)
	require.NoError(t, err)
	require.NotNil(t, employee)
	assert.Equal(t, int64(104000), employee.AnnualSalary)
	assert.Equal(t, int64(50), employee.HourlyRate) // floor(104000/2080)
	assert.Equal(t, uint64(42), employee.StartDate)
	assert.Equal(t, uint64(0), employee.LastPayment)
	assert.True(t, employee.Active)
}

func TestUnauthorizedCallersLeaveStateUntouched(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.AddEmployee("mallory", "wallet-1", 52000, "engineer", "IT", models.FrequencyWeekly, 10)
	assertCode(t, err, types.CodeUnauthorized)

	_, err = engine.FundTreasury(ctx, "mallory", 1000)
	assertCode(t, err, types.CodeUnauthorized)

	_, err = engine.ProcessPayment(ctx, "mallory", 1, 0, 0, 10)
	assertCode(t, err, types.CodeUnauthorized)

	_, err = engine.UpdateSalary("mallory", 1, 60000)
	assertCode(t, err, types.CodeUnauthorized)

	err = engine.DeactivateEmployee("mallory", 1)
	assertCode(t, err, types.CodeUnauthorized)

	_, err = engine.CreateSchedule("mallory", "weekly run", models.FrequencyWeekly, 100, "")
	assertCode(t, err, types.CodeUnauthorized)

	err = engine.ExecuteSchedule("mallory", 1, 100)
	assertCode(t, err, types.CodeUnauthorized)

	count, err := engine.EmployeeCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)

	balance, err := engine.TreasuryBalance()
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestProcessPaymentNetsBonusAndDeductions(t *testing.T) {
	engine, chain := newTestEngine(t)
	ctx := context.Background()

	id, err := engine.AddEmployee(testOwner, "wallet-1", 104000, "engineer", "IT", models.FrequencyBiweekly, 0)
	require.NoError(t, err)

	_, err = engine.FundTreasury(ctx, testOwner, 10000)
	require.NoError(t, err)

	// base 4000 + bonus 1000 - deductions 500
	amount, err := engine.ProcessPayment(ctx, testOwner, id, 1000, 500, 2016)
	require.NoError(t, err)
	assert.Equal(t, int64(4500), amount)

	balance, err := engine.TreasuryBalance()
	require.NoError(t, err)
	assert.Equal(t, int64(5500), balance)

	require.Len(t, chain.paid, 1)
	assert.Equal(t, uint64(4500), chain.paid[0])

	employee, err := engine.GetEmployee(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(2016), employee.LastPayment)
}

func TestProcessPaymentRecordsArePeriodChained(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	id, err := engine.AddEmployee(testOwner, "wallet-1", 52000, "engineer", "IT", models.FrequencyWeekly, 0)
	require.NoError(t, err)
	_, err = engine.FundTreasury(ctx, testOwner, 10000)
	require.NoError(t, err)

	_, err = engine.ProcessPayment(ctx, testOwner, id, 0, 0, 1008)
	require.NoError(t, err)
	_, err = engine.ProcessPayment(ctx, testOwner, id, 0, 0, 2016)
	require.NoError(t, err)

	var payments []models.Payment
	require.NoError(t, engine.db.Order("payment_id").Find(&payments).Error)
	require.Len(t, payments, 2)

	// Global payment-id counter, periods chained through last_payment.
	assert.Equal(t, uint64(1), payments[0].PaymentID)
	assert.Equal(t, uint64(0), payments[0].PeriodStart)
	assert.Equal(t, uint64(1008), payments[0].PeriodEnd)
	assert.Equal(t, uint64(2), payments[1].PaymentID)
	assert.Equal(t, uint64(1008), payments[1].PeriodStart)
	assert.Equal(t, uint64(2016), payments[1].PeriodEnd)
}

func TestProcessPaymentDrainsTreasuryExactly(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	id, err := engine.AddEmployee(testOwner, "wallet-1", 104000, "engineer", "IT", models.FrequencyBiweekly, 0)
	require.NoError(t, err)

	// Fund exactly one period's pay.
	_, err = engine.FundTreasury(ctx, testOwner, 4000)
	require.NoError(t, err)

	amount, err := engine.ProcessPayment(ctx, testOwner, id, 0, 0, 2016)
	require.NoError(t, err)
	assert.Equal(t, int64(4000), amount)

	balance, err := engine.TreasuryBalance()
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)

	_, err = engine.ProcessPayment(ctx, testOwner, id, 0, 0, 4032)
	assertCode(t, err, types.CodeInsufficientFunds)
}

func TestProcessPaymentRejectsNegativeNet(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	id, err := engine.AddEmployee(testOwner, "wallet-1", 104000, "engineer", "IT", models.FrequencyBiweekly, 0)
	require.NoError(t, err)
	_, err = engine.FundTreasury(ctx, testOwner, 10000)
	require.NoError(t, err)

	// deductions swamp base + bonus
	_, err = engine.ProcessPayment(ctx, testOwner, id, 100, 5000, 2016)
	assertCode(t, err, types.CodeInvalidAmount)

	balance, err := engine.TreasuryBalance()
	require.NoError(t, err)
	assert.Equal(t, int64(10000), balance)
}

func TestDeactivatedEmployeeLooksAbsentToPayments(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	id, err := engine.AddEmployee(testOwner, "wallet-1", 52000, "engineer", "IT", models.FrequencyWeekly, 0)
	require.NoError(t, err)
	_, err = engine.FundTreasury(ctx, testOwner, 10000)
	require.NoError(t, err)

	require.NoError(t, engine.DeactivateEmployee(testOwner, id))

	// Same code as a missing id, and the record is still readable.
	_, err = engine.ProcessPayment(ctx, testOwner, id, 0, 0, 1008)
	assertCode(t, err, types.CodeEmployeeNotFound)

	employee, err := engine.GetEmployee(id)
	require.NoError(t, err)
	require.NotNil(t, employee)
	assert.False(t, employee.Active)

	// Deactivating again is not an error.
	require.NoError(t, engine.DeactivateEmployee(testOwner, id))

	// Deactivated ids still count.
	count, err := engine.EmployeeCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestPaymentFailuresRollBackEverything(t *testing.T) {
	engine, chain := newTestEngine(t)
	ctx := context.Background()

	id, err := engine.AddEmployee(testOwner, "wallet-1", 52000, "engineer", "IT", models.FrequencyWeekly, 0)
	require.NoError(t, err)
	_, err = engine.FundTreasury(ctx, testOwner, 10000)
	require.NoError(t, err)

	chain.failPay = true
	_, err = engine.ProcessPayment(ctx, testOwner, id, 0, 0, 1008)
	require.Error(t, err)

	balance, err := engine.TreasuryBalance()
	require.NoError(t, err)
	assert.Equal(t, int64(10000), balance)

	var paymentCount int64
	require.NoError(t, engine.db.Model(&models.Payment{}).Count(&paymentCount).Error)
	assert.Equal(t, int64(0), paymentCount)

	employee, err := engine.GetEmployee(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), employee.LastPayment)

	// The next successful payment still draws payment id 1.
	chain.failPay = false
	_, err = engine.ProcessPayment(ctx, testOwner, id, 0, 0, 1008)
	require.NoError(t, err)

	var payment models.Payment
	require.NoError(t, engine.db.First(&payment).Error)
	assert.Equal(t, uint64(1), payment.PaymentID)
}

func TestFundTreasuryAcceptsZero(t *testing.T) {
	engine, _ := newTestEngine(t)

	balance, err := engine.FundTreasury(context.Background(), testOwner, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestUpdateSalaryRecomputesHourlyRate(t *testing.T) {
	engine, _ := newTestEngine(t)

	id, err := engine.AddEmployee(testOwner, "wallet-1", 52000, "engineer", "IT", models.FrequencyWeekly, 0)
	require.NoError(t, err)

	salary, err := engine.UpdateSalary(testOwner, id, 110240)
	require.NoError(t, err)
	assert.Equal(t, int64(110240), salary)

	employee, err := engine.GetEmployee(id)
	require.NoError(t, err)
	assert.Equal(t, int64(110240), employee.AnnualSalary)
	assert.Equal(t, int64(53), employee.HourlyRate) // floor(110240/2080)

	_, err = engine.UpdateSalary(testOwner, id, 0)
	assertCode(t, err, types.CodeInvalidAmount)

	_, err = engine.UpdateSalary(testOwner, 999, 60000)
	assertCode(t, err, types.CodeEmployeeNotFound)

	// Lookup is by existence, not by active flag.
	require.NoError(t, engine.DeactivateEmployee(testOwner, id))
	_, err = engine.UpdateSalary(testOwner, id, 62400)
	require.NoError(t, err)
}

func TestNextPaymentProjection(t *testing.T) {
	engine, _ := newTestEngine(t)

	amount, err := engine.NextPayment(999)
	require.NoError(t, err)
	assert.Equal(t, int64(0), amount)

	id, err := engine.AddEmployee(testOwner, "wallet-1", 104000, "engineer", "IT", models.FrequencyBiweekly, 0)
	require.NoError(t, err)

	amount, err = engine.NextPayment(id)
	require.NoError(t, err)
	assert.Equal(t, int64(4000), amount)
}

func TestIsPaymentDueThresholds(t *testing.T) {
	cases := []struct {
		frequency string
		threshold uint64
	}{
		{models.FrequencyWeekly, 1008},
		{models.FrequencyBiweekly, 2016},
		{models.FrequencyMonthly, 4320},
	}

	for _, tc := range cases {
		t.Run(tc.frequency, func(t *testing.T) {
			engine, _ := newTestEngine(t)

			id, err := engine.AddEmployee(testOwner, "wallet-1", 52000, "engineer", "IT", tc.frequency, 0)
			require.NoError(t, err)

			due, err := engine.IsPaymentDue(id, 0)
			require.NoError(t, err)
			assert.False(t, due, "not due at creation")

			due, err = engine.IsPaymentDue(id, tc.threshold-1)
			require.NoError(t, err)
			assert.False(t, due, "not due one block early")

			due, err = engine.IsPaymentDue(id, tc.threshold)
			require.NoError(t, err)
			assert.True(t, due, "due exactly at the threshold")
		})
	}
}

func TestIsPaymentDueUnknownCases(t *testing.T) {
	engine, _ := newTestEngine(t)

	due, err := engine.IsPaymentDue(999, 100000)
	require.NoError(t, err)
	assert.False(t, due, "unknown employee is never due")

	id, err := engine.AddEmployee(testOwner, "wallet-1", 52000, "engineer", "IT", "quarterly", 0)
	require.NoError(t, err)

	due, err = engine.IsPaymentDue(id, 100000)
	require.NoError(t, err)
	assert.False(t, due, "unknown frequency is never due")

	amount, err := engine.NextPayment(id)
	require.NoError(t, err)
	assert.Equal(t, int64(0), amount, "unknown frequency pays zero")
}

func TestScheduleLifecycle(t *testing.T) {
	engine, _ := newTestEngine(t)

	id, err := engine.CreateSchedule(testOwner, "weekly IT run", models.FrequencyWeekly, 500, "IT")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	id2, err := engine.CreateSchedule(testOwner, "monthly all", models.FrequencyMonthly, 4320, "")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), id2)

	// Missing schedule reports the not-found class code.
	err = engine.ExecuteSchedule(testOwner, 999, 1000)
	assertCode(t, err, types.CodeEmployeeNotFound)

	// Not yet due reuses the Unauthorized code.
	err = engine.ExecuteSchedule(testOwner, id, 499)
	assertCode(t, err, types.CodeUnauthorized)

	require.NoError(t, engine.ExecuteSchedule(testOwner, id, 500))

	// An inactive schedule reports the same code as a stale one.
	require.NoError(t, engine.db.Model(&models.Schedule{}).Where("id = ?", id).Update("active", false).Error)
	err = engine.ExecuteSchedule(testOwner, id, 1000)
	assertCode(t, err, types.CodeUnauthorized)
}

func TestStubOperationsValidateOnly(t *testing.T) {
	engine, _ := newTestEngine(t)

	require.NoError(t, engine.ProcessDepartmentPayroll(testOwner, "IT"))
	err := engine.ProcessDepartmentPayroll("mallory", "IT")
	assertCode(t, err, types.CodeUnauthorized)

	err = engine.SetBonus(testOwner, 999, 100)
	assertCode(t, err, types.CodeEmployeeNotFound)

	id, err := engine.AddEmployee(testOwner, "wallet-1", 52000, "engineer", "IT", models.FrequencyWeekly, 0)
	require.NoError(t, err)
	require.NoError(t, engine.SetBonus(testOwner, id, 100))
}
