package loan

import "github.com/shopspring/decimal"

// Profile is the subset of a customer record the loan rules read.
// A zero MonthlySalary.Valid means the salary is unknown; a nil CreditScore
// means the score is unknown.
type Profile struct {
	MonthlySalary    decimal.NullDecimal
	CreditScore      *int
	EmploymentStatus string
}

type Assessment struct {
	Eligible      bool
	MaxLoanAmount decimal.Decimal
	Tier          CreditTier
}

func Assess(evaluator EligibilityEvaluator, calculator LimitCalculator, p Profile) Assessment {
	return Assessment{
		Eligible:      evaluator.IsEligible(p),
		MaxLoanAmount: calculator.MaxLoan(p),
		Tier:          TierFor(p.CreditScore),
	}
}
