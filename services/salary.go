package services

import "github.com/abaraemmanuel62/Crypto-Payroll-Disbursement/models"

// Pay periods per year for each frequency.
const (
	weeksPerYear     = 52
	biweeksPerYear   = 26
	monthsPerYear    = 12
	blocksPerWeek    = 1008
	blocksPerTwoWeek = 2016
	blocksPerMonth   = 4320
)

// PeriodSalary returns the gross pay for one period, floor-divided from the
// annual salary. An unrecognized frequency yields 0 rather than an error;
// that matches the on-chain records and is pinned by tests.
func PeriodSalary(annualSalary int64, frequency string) int64 {
	switch frequency {
	case models.FrequencyWeekly:
		return annualSalary / weeksPerYear
	case models.FrequencyBiweekly:
		return annualSalary / biweeksPerYear
	case models.FrequencyMonthly:
		return annualSalary / monthsPerYear
	}
	return 0
}

// DueThreshold returns the number of blocks that must elapse since the last
// payment before the next one is due. ok is false for unknown frequencies,
// which are never due.
func DueThreshold(frequency string) (blocks uint64, ok bool) {
	switch frequency {
	case models.FrequencyWeekly:
		return blocksPerWeek, true
	case models.FrequencyBiweekly:
		return blocksPerTwoWeek, true
	case models.FrequencyMonthly:
		return blocksPerMonth, true
	}
	return 0, false
}

// HourlyRate derives the stored hourly rate from the annual salary. It is
// recomputed on every salary write, never carried forward.
func HourlyRate(annualSalary int64) int64 {
	return annualSalary / models.HoursPerYear
}
