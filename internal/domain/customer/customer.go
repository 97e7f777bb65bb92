package customer

import (
	"customer-management/internal/domain/loan"
	"customer-management/internal/pkg/apperrors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Customer struct {
	CustomerID       int64               `json:"customerId"`
	Name             string              `json:"name"`
	Surname          string              `json:"surname"`
	Username         string              `json:"username"`
	Email            string              `json:"email"`
	Phone            string              `json:"phone,omitempty"`
	Address          string              `json:"address,omitempty"`
	MonthlySalary    decimal.NullDecimal `json:"monthlySalary"`
	CreditScore      *int                `json:"creditScore,omitempty"`
	EmploymentStatus string              `json:"employmentStatus,omitempty"`
	LoanEligible     bool                `json:"loanEligible"`
	MaxLoanAmount    decimal.Decimal     `json:"maxLoanAmount"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt"`
}

func (c *Customer) LoanProfile() loan.Profile {
	return loan.Profile{
		MonthlySalary:    c.MonthlySalary,
		CreditScore:      c.CreditScore,
		EmploymentStatus: c.EmploymentStatus,
	}
}

func (c *Customer) ApplyAssessment(a loan.Assessment) {
	c.LoanEligible = a.Eligible
	c.MaxLoanAmount = a.MaxLoanAmount
}

// AssessmentDiffers reports whether the stored derived fields disagree with a.
func (c *Customer) AssessmentDiffers(a loan.Assessment) bool {
	return c.LoanEligible != a.Eligible || !c.MaxLoanAmount.Equal(a.MaxLoanAmount)
}

// Overwrite replaces every caller-editable field with the value from src,
// including zero values. Identity, timestamps and derived loan fields are kept.
func (c *Customer) Overwrite(src *Customer) {
	c.Name = src.Name
	c.Surname = src.Surname
	c.Username = src.Username
	c.Email = src.Email
	c.Phone = src.Phone
	c.Address = src.Address
	c.MonthlySalary = src.MonthlySalary
	c.CreditScore = nil
	if src.CreditScore != nil {
		score := *src.CreditScore
		c.CreditScore = &score
	}
	c.EmploymentStatus = src.EmploymentStatus
}

// Normalize trims identity and contact fields. EmploymentStatus is stored
// verbatim because the eligibility rules match it exactly.
func (c *Customer) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Surname = strings.TrimSpace(c.Surname)
	c.Username = strings.TrimSpace(c.Username)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Phone = strings.TrimSpace(c.Phone)
	c.Address = strings.TrimSpace(c.Address)
}

// MoneyScale matches the NUMERIC(19, 2) salary column.
const MoneyScale = 2

func (c *Customer) Validate() error {
	switch {
	case c.Name == "":
		return apperrors.NewValidationError("name", "cannot be empty")
	case c.Surname == "":
		return apperrors.NewValidationError("surname", "cannot be empty")
	case c.Username == "":
		return apperrors.NewValidationError("username", "cannot be empty")
	case c.Email == "":
		return apperrors.NewValidationError("email", "cannot be empty")
	case !strings.Contains(c.Email, "@"):
		return apperrors.NewValidationError("email", "must be a valid email address")
	case c.MonthlySalary.Valid && c.MonthlySalary.Decimal.IsNegative():
		return apperrors.NewValidationError("monthlySalary", "cannot be negative")
	case c.MonthlySalary.Valid && !c.MonthlySalary.Decimal.Equal(c.MonthlySalary.Decimal.Round(MoneyScale)):
		return apperrors.NewValidationError("monthlySalary", "must have at most 2 decimal places")
	case c.CreditScore != nil && *c.CreditScore < 0:
		return apperrors.NewValidationError("creditScore", "cannot be negative")
	}
	return nil
}
