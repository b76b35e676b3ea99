package models

// Pay frequencies. Anything else divides to a zero paycheck and never
// comes due; the engine does not reject it.
const (
	FrequencyWeekly   = "weekly"
	FrequencyBiweekly = "biweekly"
	FrequencyMonthly  = "monthly"
)

// HoursPerYear is the divisor for the derived hourly rate (52 weeks * 40h).
const HoursPerYear = 2080

type Employee struct {
	ID            uint64 `gorm:"primaryKey;autoIncrement:false" json:"id"`
	WalletAddress string `gorm:"not null" json:"wallet_address"`
	AnnualSalary  int64  `gorm:"not null" json:"annual_salary"` // smallest currency unit
	HourlyRate    int64  `json:"hourly_rate"`                   // always floor(AnnualSalary/2080)
	Role          string `json:"role"`
	Department    string `json:"department"`
	StartDate     uint64 `json:"start_date"` // block height at creation
	PayFrequency  string `gorm:"not null" json:"pay_frequency"`
	Active        bool   `gorm:"not null;default:true" json:"active"`
	LastPayment   uint64 `json:"last_payment"` // height of last payout, 0 before the first
}

// Payment rows are append-only; nothing updates or deletes them. PaymentID
// is drawn from a single global counter, so the composite key is wider than
// strictly needed; kept for compatibility with the on-chain records.
type Payment struct {
	EmployeeID  uint64 `gorm:"primaryKey;autoIncrement:false" json:"employee_id"`
	PaymentID   uint64 `gorm:"primaryKey;autoIncrement:false" json:"payment_id"`
	Amount      int64  `gorm:"not null" json:"amount"` // net of bonus and deductions
	Bonus       int64  `json:"bonus"`
	Deductions  int64  `json:"deductions"`
	PaidAt      uint64 `json:"paid_at"` // block height of the payout
	PeriodStart uint64 `json:"period_start"`
	PeriodEnd   uint64 `json:"period_end"`
	TxRef       string `json:"tx_ref"` // chain transfer reference
}

type Schedule struct {
	ID               uint64 `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name             string `gorm:"not null" json:"name"`
	Frequency        string `gorm:"not null" json:"frequency"`
	NextExecution    uint64 `json:"next_execution"` // block height
	DepartmentFilter string `json:"department_filter,omitempty"`
	Active           bool   `gorm:"not null;default:true" json:"active"`
}

// LedgerState is a singleton row (ID always 1) holding the engine-owned
// counters. Ids are never reused: each counter only moves forward, and only
// inside a committed transition.
type LedgerState struct {
	ID              uint   `gorm:"primaryKey" json:"-"`
	Owner           string `gorm:"not null" json:"owner"`
	TreasuryBalance int64  `gorm:"not null;default:0" json:"treasury_balance"`
	NextEmployeeID  uint64 `gorm:"not null;default:1" json:"-"`
	NextPaymentID   uint64 `gorm:"not null;default:1" json:"-"`
	NextScheduleID  uint64 `gorm:"not null;default:1" json:"-"`
}
