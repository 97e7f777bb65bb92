package loan_test

import "github.com/shopspring/decimal"

func salary(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func score(n int) *int {
	return &n
}
