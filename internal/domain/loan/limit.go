package loan

import "github.com/shopspring/decimal"

type CreditTier struct {
	Name       string
	MinScore   int
	Multiplier decimal.Decimal
}

var (
	TierExcellent = CreditTier{Name: "EXCELLENT", MinScore: 750, Multiplier: decimal.NewFromInt(6)}
	TierGood      = CreditTier{Name: "GOOD", MinScore: 650, Multiplier: decimal.NewFromInt(4)}
	TierFair      = CreditTier{Name: "FAIR", MinScore: 550, Multiplier: decimal.NewFromInt(2)}
	TierPoor      = CreditTier{Name: "POOR", MinScore: 0, Multiplier: decimal.NewFromInt(1)}
)

// ordered from the highest threshold down; TierPoor is the fallback
var scoredTiers = []CreditTier{TierExcellent, TierGood, TierFair}

var monthsPerYear = decimal.NewFromInt(12)

// TierFor maps a credit score to its tier. An unknown score is treated as 0.
func TierFor(score *int) CreditTier {
	s := 0
	if score != nil {
		s = *score
	}
	for _, tier := range scoredTiers {
		if s >= tier.MinScore {
			return tier
		}
	}
	return TierPoor
}

type LimitCalculator interface {
	MaxLoan(p Profile) decimal.Decimal
}

var _ LimitCalculator = limitCalculator{}

type limitCalculator struct{}

func NewLimitCalculator() LimitCalculator {
	return limitCalculator{}
}

// MaxLoan is annual salary times the tier multiplier. It does not look at
// eligibility: an ineligible customer with a known salary still gets a limit.
func (limitCalculator) MaxLoan(p Profile) decimal.Decimal {
	if !p.MonthlySalary.Valid {
		return decimal.Zero
	}

	annualSalary := p.MonthlySalary.Decimal.Mul(monthsPerYear)
	return annualSalary.Mul(TierFor(p.CreditScore).Multiplier)
}
