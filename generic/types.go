/*
Package generic provides the calendar primitives shared by the leave engine.

PURPOSE:
  Domain-agnostic date handling: canonical calendar dates, inclusive
  periods, normalization of heterogeneous date strings, merging dates into
  contiguous ranges, and range filtering by month or window. Also holds the
  decimal Amount type and the error taxonomy.

KEY CONCEPTS:
  - Date: comparable calendar date, no clock, no zone
  - Period: inclusive [Start, End] run of dates
  - Normalized: tagged result of parsing an upstream date string
  - Amount: decimal quantity with a unit (days or hours)

DESIGN PRINCIPLES:
  1. Calendar arithmetic only: day differences are computed on dates,
     never on wall-clock timestamps
  2. Precision: decimal.Decimal for hours/days
  3. Everything here is pure; no I/O, no logging

SEE ALSO:
  - normalize.go: date normalizer
  - ranges.go: range builder and filters
  - errors.go: error taxonomy
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Quantity with unit
// =============================================================================

type Amount struct {
	Value decimal.Decimal
	Unit  Unit
}

type Unit string

const (
	UnitDays  Unit = "days"
	UnitHours Unit = "hours"
)

// DefaultHoursPerDay is a full working day.
const DefaultHoursPerDay = 8

func NewAmount(value float64, unit Unit) Amount {
	return Amount{Value: decimal.NewFromFloat(value), Unit: unit}
}

func NewAmountFromInt(value int, unit Unit) Amount {
	return Amount{Value: decimal.NewFromInt(int64(value)), Unit: unit}
}

func Days(n float64) Amount { return NewAmount(n, UnitDays) }
func Hours(n float64) Amount { return NewAmount(n, UnitHours) }

func ZeroDays() Amount { return Amount{Value: decimal.Zero, Unit: UnitDays} }

func (a Amount) Zero() Amount { return Amount{Value: decimal.Zero, Unit: a.Unit} }
func (a Amount) Add(b Amount) Amount { return Amount{Value: a.Value.Add(b.Value), Unit: a.Unit} }
func (a Amount) Sub(b Amount) Amount { return Amount{Value: a.Value.Sub(b.Value), Unit: a.Unit} }
func (a Amount) IsNegative() bool { return a.Value.IsNegative() }
func (a Amount) IsZero() bool { return a.Value.IsZero() }
func (a Amount) IsPositive() bool { return a.Value.IsPositive() }
func (a Amount) GreaterThan(b Amount) bool { return a.Value.GreaterThan(b.Value) }
func (a Amount) LessThan(b Amount) bool { return a.Value.LessThan(b.Value) }
func (a Amount) Equal(b Amount) bool { return a.Value.Equal(b.Value) }
func (a Amount) String() string { return a.Value.String() + " " + string(a.Unit) }

// Max returns the larger of a and b.
func (a Amount) Max(b Amount) Amount {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// InDays converts to days. Hours are divided by hoursPerDay (8 when <= 0).
func (a Amount) InDays(hoursPerDay decimal.Decimal) Amount {
	if a.Unit != UnitHours {
		return Amount{Value: a.Value, Unit: UnitDays}
	}
	if !hoursPerDay.IsPositive() {
		hoursPerDay = decimal.NewFromInt(DefaultHoursPerDay)
	}
	return Amount{Value: a.Value.Div(hoursPerDay), Unit: UnitDays}
}
