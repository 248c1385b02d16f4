package services

import (
	"strings"

	"github.com/shopspring/decimal"
)

const moneyScale = 2

// ParseMoney reads a currency amount with at most two fraction digits.
func ParseMoney(field string, raw string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, invalid(field, "not a number")
	}
	return value, validateMoneyScale(field, value)
}

func validateMoneyScale(field string, value decimal.Decimal) error {
	if !value.Equal(value.Round(moneyScale)) {
		return invalid(field, "more than two fraction digits")
	}
	return nil
}

func RequirePositiveMoney(field string, value decimal.Decimal) (decimal.Decimal, error) {
	if err := validateMoneyScale(field, value); err != nil {
		return decimal.Zero, err
	}
	if !value.IsPositive() {
		return decimal.Zero, invalid(field, "must be greater than zero")
	}
	return value.Round(moneyScale), nil
}

func RequireNonNegativeMoney(field string, value decimal.Decimal) (decimal.Decimal, error) {
	if err := validateMoneyScale(field, value); err != nil {
		return decimal.Zero, err
	}
	if value.IsNegative() {
		return decimal.Zero, invalid(field, "must not be negative")
	}
	return value.Round(moneyScale), nil
}

// floorAtZero applies a signed delta and never lets the result go negative.
func floorAtZero(current decimal.Decimal, delta decimal.Decimal) decimal.Decimal {
	next := current.Add(delta).Round(moneyScale)
	if next.IsNegative() {
		return decimal.Zero
	}
	return next
}
