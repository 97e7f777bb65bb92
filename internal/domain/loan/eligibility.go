package loan

import "github.com/shopspring/decimal"

const (
	EmploymentEmployed     = "Employed"
	EmploymentSelfEmployed = "Self-Employed"
	EmploymentUnemployed   = "Unemployed"
)

const (
	DefaultMinMonthlySalary = "1000"
	DefaultMinCreditScore   = 500
)

type EligibilityPolicy struct {
	MinMonthlySalary   decimal.Decimal
	MinCreditScore     int
	EmploymentStatuses []string
}

func DefaultEligibilityPolicy() EligibilityPolicy {
	return EligibilityPolicy{
		MinMonthlySalary:   decimal.RequireFromString(DefaultMinMonthlySalary),
		MinCreditScore:     DefaultMinCreditScore,
		EmploymentStatuses: []string{EmploymentEmployed, EmploymentSelfEmployed},
	}
}

type EligibilityEvaluator interface {
	IsEligible(p Profile) bool
}

var _ EligibilityEvaluator = (*eligibilityEvaluator)(nil)

// eligibilityEvaluator is read-only after construction and safe for concurrent use.
type eligibilityEvaluator struct {
	minSalary   decimal.Decimal
	minScore    int
	employments map[string]struct{}
}

func NewEligibilityEvaluator(policy EligibilityPolicy) EligibilityEvaluator {
	employments := make(map[string]struct{}, len(policy.EmploymentStatuses))
	for _, status := range policy.EmploymentStatuses {
		employments[status] = struct{}{}
	}
	return &eligibilityEvaluator{
		minSalary:   policy.MinMonthlySalary,
		minScore:    policy.MinCreditScore,
		employments: employments,
	}
}

func (e *eligibilityEvaluator) IsEligible(p Profile) bool {
	if !p.MonthlySalary.Valid {
		return false
	}

	salaryCheck := p.MonthlySalary.Decimal.GreaterThanOrEqual(e.minSalary)
	creditCheck := p.CreditScore != nil && *p.CreditScore >= e.minScore
	_, employmentCheck := e.employments[p.EmploymentStatus]

	return salaryCheck && creditCheck && employmentCheck
}
