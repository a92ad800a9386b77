/*
policies.go - Paid-time-off quota policy

PURPOSE:
  The policy constants the ledger evaluates against: how many paid days an
  employee gets per accounting year, how many hours make a full day, and
  how accounting years are laid out.

  There is no accrual schedule: the quota is granted in full for the year
  and the remaining amount is recomputed from history on every evaluation.

EXAMPLE:
  policy := timeoff.DefaultQuotaPolicy()
  policy.AnnualPaidDays = decimal.NewFromInt(15)
  policy.Period = generic.PeriodConfig{
      Type:                 generic.PeriodFiscalYear,
      FiscalYearStartMonth: time.April,
  }
  ledger := timeoff.NewLedger(policy)

SEE ALSO:
  - ledger.go: Evaluate / DecideCategory
  - config/config.go: policy section of the YAML file
*/
package timeoff

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-engine/generic"
)

// Default policy values.
const (
	DefaultAnnualPaidDays = 12
)

// QuotaPolicy is the paid-time-off allowance of one accounting year.
type QuotaPolicy struct {
	AnnualPaidDays decimal.Decimal
	FullDayHours   decimal.Decimal
	Period         generic.PeriodConfig
}

// DefaultQuotaPolicy is 12 paid days per calendar year with 8-hour days.
func DefaultQuotaPolicy() QuotaPolicy {
	return QuotaPolicy{
		AnnualPaidDays: decimal.NewFromInt(DefaultAnnualPaidDays),
		FullDayHours:   decimal.NewFromInt(FullDayHours),
		Period:         generic.PeriodConfig{Type: generic.PeriodCalendarYear},
	}
}

// Validate checks the policy is usable.
func (p QuotaPolicy) Validate() error {
	if p.AnnualPaidDays.IsNegative() {
		return fmt.Errorf("%w: annual paid days must not be negative", generic.ErrInvalidAmount)
	}
	if !p.FullDayHours.IsPositive() {
		return fmt.Errorf("%w: full day hours must be positive", generic.ErrInvalidAmount)
	}
	if p.Period.Type == generic.PeriodFiscalYear &&
		(p.Period.FiscalYearStartMonth < 1 || p.Period.FiscalYearStartMonth > 12) {
		return fmt.Errorf("%w: fiscal year start month %d", generic.ErrInvalidPeriod, p.Period.FiscalYearStartMonth)
	}
	return nil
}
